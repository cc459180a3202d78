// Command reconcile runs the extraction engine offline against an OCR text
// dump and a saved model response. Useful for replaying a bad parse without
// a database or an API key.
//
// Usage:
//
//	reconcile <ocr.txt> <response.json>
//
// Either argument may be "-" to read that input from stdin (not both).
package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"receipt-digitizer/internal/normalize"
	"receipt-digitizer/internal/reconcile"
	"receipt-digitizer/internal/validate"
)

type output struct {
	Receipt    any              `json:"receipt"`
	Validation *validate.Report `json:"validation"`
	InvoiceID  *string          `json:"invoice_id,omitempty"`
	PayloadOK  bool             `json:"payload_ok"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) != 3 {
		logger.Error("usage: reconcile <ocr.txt> <response.json>")
		os.Exit(2)
	}
	if os.Args[1] == "-" && os.Args[2] == "-" {
		logger.Error("only one input may be stdin")
		os.Exit(2)
	}

	ocrText := readInput(logger, os.Args[1])
	response := readInput(logger, os.Args[2])

	res := reconcile.Reconcile(normalize.CleanText(ocrText), response)
	rep := validate.Check(res.Receipt)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{
		Receipt:    res.Receipt,
		Validation: &rep,
		InvoiceID:  res.InvoiceID,
		PayloadOK:  res.PayloadOK,
	}); err != nil {
		logger.Error("encode output", "error", err)
		os.Exit(1)
	}
}

func readInput(logger *slog.Logger, arg string) string {
	if arg == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Error("read stdin", "error", err)
			os.Exit(1)
		}
		return string(b)
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		logger.Error("read file", "path", arg, "error", err)
		os.Exit(1)
	}
	return string(b)
}
