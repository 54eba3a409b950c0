package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/uilacceb/splitter/internal/service"
	"github.com/uilacceb/splitter/pkg/api"
)

func netCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "net",
		Short: "Net a list of obligations",
		Long: `Reads obligations as JSON, either {"obligations": [...]} or a bare array of
{"from", "to", "amount"} objects, and prints the netted obligations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			obligations, err := readObligations(cmd, inputPath)
			if err != nil {
				return err
			}
			resp, err := service.NewCalculatorService().Net(cmd.Context(),
				connect.NewRequest(&api.NetRequest{Obligations: obligations}))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp.Msg)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "file", "f", "-", "Input file (- for stdin)")
	return cmd
}

func planCmd() *cobra.Command {
	var (
		inputPath string
		mode      string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Propose the fewest payments that clear a list of obligations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			obligations, err := readObligations(cmd, inputPath)
			if err != nil {
				return err
			}
			resp, err := service.NewCalculatorService().Plan(cmd.Context(),
				connect.NewRequest(&api.PlanRequest{Obligations: obligations, Mode: mode}))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp.Msg)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "file", "f", "-", "Input file (- for stdin)")
	cmd.Flags().StringVar(&mode, "mode", "", "Planning mode: pairwise or contribution (default: detect)")
	return cmd
}

func readObligations(cmd *cobra.Command, path string) ([]api.Obligation, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var list []api.Obligation
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var req api.NetRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse obligations: %w", err)
	}
	return req.Obligations, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
