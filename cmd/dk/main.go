package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cenkalti/backoff/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dispatchkernel/internal/backend"
	"dispatchkernel/internal/config"
	"dispatchkernel/internal/dataset"
	"dispatchkernel/internal/logger"
	"dispatchkernel/internal/pipeline"
)

func main() {
	_ = godotenv.Load() // loads .env

	root := &cobra.Command{
		Use:           "dk",
		Short:         "DispatchKernel: call-center audio and transcripts into structured JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(transcribeCmd(), analyzeCmd(), pipelineCmd(), batchCmd())

	if err := root.Execute(); err != nil {
		// Flag and usage mistakes never reach emitError; print those as
		// plain text. Enveloped failures were already written to stderr.
		if !errors.Is(err, errEmitted) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// errEmitted marks failures whose envelope already went to stderr.
var errEmitted = errors.New("error emitted")

// emitError writes the single-line envelope to stderr. stdout stays
// reserved for success payloads.
func emitError(code string, err error) error {
	raw, _ := json.Marshal(pipeline.NewEnvelope(code, err))
	fmt.Fprintln(os.Stderr, string(raw))
	return errEmitted
}

func writeResult(outPath string, payload any) error {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	if outPath != "" {
		return os.WriteFile(outPath, raw, 0o644)
	}
	_, err = os.Stdout.Write(raw)
	return err
}

func transcribeCmd() *cobra.Command {
	var inputPath, outPath string
	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe audio into JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.New().WithRun("transcribe")
			cfg, err := config.Load()
			if err != nil {
				return emitError(pipeline.CodeTranscribe, err)
			}
			res, err := pipeline.New(cfg, log).Transcribe(cmd.Context(), inputPath)
			if err != nil {
				return emitError(pipeline.CodeTranscribe, err)
			}
			if err := writeResult(outPath, res); err != nil {
				return emitError(pipeline.CodeTranscribe, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "audio file to transcribe")
	cmd.Flags().StringVar(&outPath, "out", "", "write JSON here instead of stdout")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var inputPath, modeFlag string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze transcript text into structured JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.New().WithRun("analyze")
			cfg, err := config.Load()
			if err != nil {
				return emitError(pipeline.CodeAnalysis, err)
			}
			mode, err := backend.ParseMode(modeFlag)
			if err != nil {
				return emitError(pipeline.CodeAnalysis, err)
			}
			res, err := pipeline.New(cfg, log).Analyze(cmd.Context(), inputPath, mode)
			if err != nil {
				return emitError(pipeline.CodeAnalysis, err)
			}
			if err := writeResult("", res); err != nil {
				return emitError(pipeline.CodeAnalysis, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "transcript text file")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "metadata or rollup")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("mode")
	return cmd
}

func pipelineCmd() *cobra.Command {
	var inputPath, modeFlag string
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Compose transcription and both analysis modes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.New().WithRun("pipeline")
			cfg, err := config.Load()
			if err != nil {
				return emitError(pipeline.CodePipeline, err)
			}
			if modeFlag != "both" {
				return emitError(pipeline.CodePipeline,
					&backend.UnsupportedError{Kind: "pipeline mode", Value: modeFlag})
			}
			res, err := pipeline.New(cfg, log).Run(cmd.Context(), inputPath)
			if err != nil {
				return emitError(pipeline.CodePipeline, err)
			}
			if err := writeResult("", res); err != nil {
				return emitError(pipeline.CodePipeline, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "audio file to process")
	cmd.Flags().StringVar(&modeFlag, "mode", "both", "must be both")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// rowResult is one batch entry; failed rows carry an error instead of a
// result so a single bad transcript never sinks the whole sheet.
type rowResult struct {
	CallID string         `json:"call_id"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func batchCmd() *cobra.Command {
	var inputPath, modeFlag string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every transcript row in a spreadsheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.New().WithRun("batch")
			cfg, err := config.Load()
			if err != nil {
				return emitError(pipeline.CodeBatch, err)
			}
			mode, err := backend.ParseMode(modeFlag)
			if err != nil {
				return emitError(pipeline.CodeBatch, err)
			}
			rows, err := dataset.Load(inputPath)
			if err != nil {
				return emitError(pipeline.CodeBatch, err)
			}

			runner := pipeline.New(cfg, log)
			out := make([]rowResult, 0, len(rows))
			for _, row := range rows {
				rowLog := log.WithField("call_id", row.CallID)

				var res map[string]any
				op := func() error {
					var err error
					res, err = runner.AnalyzeText(cmd.Context(), row.Transcript, mode)
					if err != nil {
						var be *backend.Error
						if !errors.As(err, &be) {
							// Schema, extraction and selector failures
							// will not heal on retry.
							return backoff.Permanent(err)
						}
					}
					return err
				}
				bo := backoff.NewExponentialBackOff()
				bo.MaxElapsedTime = cfg.Timeout()
				if err := backoff.Retry(op, bo); err != nil {
					rowLog.WithError(err).Debug("row failed")
					out = append(out, rowResult{CallID: row.CallID, Error: err.Error()})
					continue
				}
				rowLog.Debug("row analyzed")
				out = append(out, rowResult{CallID: row.CallID, Result: res})
			}

			if err := writeResult("", out); err != nil {
				return emitError(pipeline.CodeBatch, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "spreadsheet (.xlsx) with transcript rows")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "metadata or rollup")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("mode")
	return cmd
}
