package cmd

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"

	"github.com/VismaKosice/pension-engine/engine"
	"github.com/VismaKosice/pension-engine/log"
	"github.com/VismaKosice/pension-engine/mutation"
	"github.com/VismaKosice/pension-engine/scheme"
	"github.com/VismaKosice/pension-engine/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Exit codes for calc.
const (
	exitSuccess      = 0
	exitFailure      = 1
	exitInvalidInput = 2
)

// CalcCommand returns the calc command: evaluate one calculation request
// document and print the response. Useful for local runs and pipelines
// without standing up the HTTP service.
func CalcCommand() *cli.Command {
	return &cli.Command{
		Name:  "calc",
		Usage: "Evaluate a calculation request document once",
		UsageText: `pensiond calc --request <path> [options]

EXAMPLES:
  # Evaluate a request file
  pensiond calc --request ./request.json

  # Evaluate from stdin
  cat request.json | pensiond calc --request -

  # Evaluate against a scheme registry
  pensiond calc --request ./request.json \
    --scheme-registry-url https://registry.example.com`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "request",
				Usage:    `Path to the request JSON file ("-" for stdin)`,
				Required: true,
			},
			&cli.StringFlag{
				Name:  "scheme-registry-url",
				Usage: "Scheme registry base URL (optional)",
			},
		},
		Action: calcAction,
	}
}

func calcAction(c *cli.Context) error {
	data, err := readRequest(c.String("request"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), exitInvalidInput)
	}

	var req types.CalculationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return cli.Exit(fmt.Sprintf("Error: request is not valid JSON: %v", err), exitInvalidInput)
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		for _, fe := range fieldErrs {
			fmt.Fprintf(os.Stderr, "invalid field %s: %s\n", fe.Name, fe.Reason)
		}
		return cli.Exit("Error: request failed schema validation", exitInvalidInput)
	}

	var rates scheme.RateProvider = scheme.Default()
	if url := c.String("scheme-registry-url"); url != "" {
		client, err := scheme.NewRegistryClient(scheme.RegistryConfig{
			BaseURL: url,
			Logger:  log.New("pensiond"),
		})
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), exitInvalidInput)
		}
		defer func() { _ = client.Close() }()
		rates = client
	}

	evaluator := engine.New(engine.Config{
		Registry: mutation.NewRegistry(mutation.RegistryConfig{Rates: rates}),
	})
	resp := evaluator.Evaluate(c.Context, &req)

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: marshal response: %v", err), exitInvalidInput)
	}
	fmt.Fprintln(os.Stdout, string(out))

	if resp.CalculationMetadata.CalculationOutcome == types.OutcomeFailure {
		return cli.Exit("", exitFailure)
	}
	return nil
}

// readRequest loads the request document from a file or stdin ("-").
func readRequest(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request file: %w", err)
	}
	return data, nil
}
