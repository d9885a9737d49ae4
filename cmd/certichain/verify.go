package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"certichain/internal/certificate"
	"certichain/internal/verify"
)

func verifyCommand() *cobra.Command {
	var (
		tokenID     uint64
		name        string
		course      string
		issuerName  string
		issueDate   string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a certificate against the ledger record",
		Long: `Fetches the certificate stored under --token and compares any claimed
field values against it. With no claims the stored record is displayed
without a judgement.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := commonRun()
			ctx := cmd.Context()

			req := &certificate.VerificationRequest{TokenID: tokenID}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("course") {
				req.Course = &course
			}
			if cmd.Flags().Changed("issuer") {
				req.Issuer = &issuerName
			}
			if cmd.Flags().Changed("date") {
				req.IssueDate = &issueDate
			}

			if interactive && len(req.Expected()) == 0 {
				reader := bufio.NewReader(os.Stdin)
				req.Name = promptClaim(reader, "Expected name")
				req.Course = promptClaim(reader, "Expected course")
				req.Issuer = promptClaim(reader, "Expected issuer")
				req.IssueDate = promptClaim(reader, "Expected issue date")
			}

			reg, closeReg, err := newRegistry(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeReg()

			engine := verify.NewEngine(reg, nil, nil, log)
			result, err := engine.Verify(ctx, req)
			if err != nil {
				return err
			}

			printResult(result)
			if code := exitCodeFor(result.Verdict); code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&tokenID, "token", 0, "certificate token id")
	cmd.Flags().StringVar(&name, "name", "", "expected student name")
	cmd.Flags().StringVar(&course, "course", "", "expected course name")
	cmd.Flags().StringVar(&issuerName, "issuer", "", "expected issuing institution")
	cmd.Flags().StringVar(&issueDate, "date", "", "expected issue date")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for expected values")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// promptClaim reads one expected value. Blank input means the field is not
// asserted.
func promptClaim(reader *bufio.Reader, label string) *string {
	fmt.Fprintf(os.Stdout, "%s (blank to skip): ", label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil
	}
	value := strings.TrimSpace(line)
	if value == "" {
		return nil
	}
	return &value
}

func printResult(result *certificate.VerificationResult) {
	if result.Record != nil {
		fmt.Fprintf(os.Stdout, "Certificate %d\n", result.Record.TokenID)
		fmt.Fprintf(os.Stdout, "  Name:       %s\n", result.Record.Name)
		fmt.Fprintf(os.Stdout, "  Course:     %s\n", result.Record.Course)
		fmt.Fprintf(os.Stdout, "  Issuer:     %s\n", result.Record.Issuer)
		fmt.Fprintf(os.Stdout, "  Issue date: %s\n", result.Record.IssueDate)
	}
	for _, c := range result.Comparisons {
		mark := "ok"
		if !c.Match {
			mark = "MISMATCH"
		}
		fmt.Fprintf(os.Stdout, "  %-10s expected %q, stored %q [%s]\n", c.Field, c.Expected, c.Stored, mark)
	}
	fmt.Fprintf(os.Stdout, "Verdict: %s\n", result.Verdict)
}
