package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/pdftext"
	"github.com/joseph-ayodele/startpacket/internal/quote"
	"github.com/joseph-ayodele/startpacket/internal/schema"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		vocabPath = flag.String("vocab", "", "TOML vocabulary overriding the built-in phrase lists")
		branchID  = flag.String("branch", constants.DefaultBranchID, "default branch id")
		leadType  = flag.String("lead", string(constants.LeadInbound), "lead type: Inbound, Creative or TAP")
		validate  = flag.Bool("validate", true, "check the draft against the output JSON schema")
		showText  = flag.Bool("text", false, "print the extracted document text instead of the draft")
		verbose   = flag.Bool("v", false, "debug logging")
		timeout   = flag.Duration("timeout", time.Minute, "overall time limit")
	)
	flag.Usage = func() {
		printError("usage: parsequote [flags] <quote.pdf|quote.txt|->\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	// messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	vocab := quote.DefaultVocabulary()
	if *vocabPath != "" {
		v, err := quote.LoadVocabulary(*vocabPath)
		if err != nil {
			printError("Error: loading vocabulary: %v\n", err)
			os.Exit(1)
		}
		vocab = v
	}
	parser, err := quote.New(
		quote.WithVocabulary(vocab),
		quote.WithLogger(logger),
		quote.WithBranchID(*branchID),
		quote.WithLeadType(constants.LeadType(*leadType)),
	)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	text, err := readText(ctx, flag.Arg(0), logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *showText {
		fmt.Print(text)
		return
	}

	draft, err := parser.Parse(ctx, text)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *validate {
		if err := schema.ValidateDraft(draft); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(draft); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

func readText(ctx context.Context, arg string, logger *slog.Logger) (string, error) {
	if arg == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return pdftext.Normalize(string(b)), nil
	}
	res, err := pdftext.NewExtractor(pdftext.Config{}, logger).Extract(ctx, arg)
	if err != nil {
		return "", err
	}
	logger.Debug("text extracted", "method", res.Method, "pages", res.Pages, "warnings", res.Warnings)
	return res.Text, nil
}
