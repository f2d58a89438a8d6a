package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/taoyao-code/qris-server/internal/config"
	"github.com/taoyao-code/qris-server/internal/merchant"
	"github.com/taoyao-code/qris-server/internal/protocol/qris"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qrisctl",
		Short:         "QRIS payload tool: generate, decode and checksum EMVCo QR strings",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(decodeCmd())
	rootCmd.AddCommand(crcCmd())
	return rootCmd
}

func generateCmd() *cobra.Command {
	var (
		template     string
		configPath   string
		merchantName string
		amount       int64
		minAmount    int64
		maxAmount    int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Turn a static template into a dynamic payload with an amount",
		Long: `Generate a dynamic QRIS payload.

Without --config the template comes from --template (or the built-in default)
and the amount range from --min/--max. With --config the merchant catalog is
loaded from the server configuration and --merchant selects the template.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				gen *qris.Generator
				err error
			)
			if configPath != "" {
				gen, err = generatorFromConfig(configPath, merchantName)
			} else {
				gen, err = qris.NewGenerator(template,
					qris.WithAmountLimits(qris.AmountLimits{Min: minAmount, Max: maxAmount}))
			}
			if err != nil {
				return err
			}

			var payload string
			if amount == 0 {
				payload, err = gen.Static()
			} else {
				payload, err = gen.Generate(amount)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", cfgpkg.DefaultTemplate, "Static QRIS template")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Server config file; enables the merchant catalog")
	cmd.Flags().StringVarP(&merchantName, "merchant", "m", "", "Merchant name in the catalog (default merchant if empty)")
	cmd.Flags().Int64VarP(&amount, "amount", "a", 0, "Transaction amount; 0 re-emits the static template")
	cmd.Flags().Int64Var(&minAmount, "min", qris.DefaultAmountLimits.Min, "Minimum accepted amount")
	cmd.Flags().Int64Var(&maxAmount, "max", qris.DefaultAmountLimits.Max, "Maximum accepted amount")

	return cmd
}

func generatorFromConfig(path, merchantName string) (*qris.Generator, error) {
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return nil, err
	}
	catalog, err := merchant.FromConfig(cfg.QRIS)
	if err != nil {
		return nil, err
	}
	gen, _, err := catalog.Lookup(merchantName)
	return gen, err
}

func decodeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode [payload]",
		Short: "Parse a payload and verify its checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := qris.Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(p); err != nil {
					return err
				}
			} else {
				printFields(cmd, p.Fields, "")
				fmt.Fprintf(out, "checksum: %s (%s)\n", p.Checksum, validText(p.ChecksumValid))
			}

			if !p.ChecksumValid {
				return errors.New("checksum mismatch")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func printFields(cmd *cobra.Command, list qris.List, indent string) {
	for _, n := range list {
		if n.IsTemplate() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s:\n", indent, n.Tag)
			printFields(cmd, n.Children, indent+"  ")
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s = %s\n", indent, n.Tag, n.Value)
	}
}

func validText(ok bool) string {
	if ok {
		return "valid"
	}
	return "INVALID"
}

func crcCmd() *cobra.Command {
	var appendTag bool

	cmd := &cobra.Command{
		Use:   "crc [text]",
		Short: "Compute the CRC16/CCITT-FALSE checksum of a string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := args[0]
			if appendTag {
				// 校验范围包含 "6304" 本身
				text += qris.TagCRC + "04"
				fmt.Fprintln(cmd.OutOrStdout(), text+qris.ChecksumHex(text))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), qris.ChecksumHex(text))
			return nil
		},
	}

	cmd.Flags().BoolVar(&appendTag, "append", false, "Append the \"6304\" header and checksum to the text")
	return cmd
}
