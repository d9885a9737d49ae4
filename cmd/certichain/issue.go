package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"certichain/internal/allocator"
	"certichain/internal/certificate"
	"certichain/internal/history"
	"certichain/internal/issue"
)

func issueCommand() *cobra.Command {
	var (
		recipient   string
		name        string
		course      string
		issuerName  string
		issueDate   string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a certificate with a freshly allocated token id",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := commonRun()
			ctx := cmd.Context()

			if interactive {
				reader := bufio.NewReader(os.Stdin)
				recipient = promptIfEmpty(reader, "Recipient address", recipient)
				name = promptIfEmpty(reader, "Student name", name)
				course = promptIfEmpty(reader, "Course", course)
				issuerName = promptIfEmpty(reader, "Issuer", issuerName)
				issueDate = promptIfEmpty(reader, "Issue date", issueDate)
			}

			reg, closeReg, err := newRegistry(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeReg()

			svc := issue.NewService(allocator.New(), reg, history.NewMemory(), nil, nil, log)
			outcome, err := svc.Issue(ctx, issue.Request{
				Recipient: recipient,
				Fields: certificate.Fields{
					Name:      name,
					Course:    course,
					Issuer:    issuerName,
					IssueDate: issueDate,
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Certificate issued\n")
			fmt.Fprintf(os.Stdout, "  Token ID: %d\n", outcome.TokenID)
			fmt.Fprintf(os.Stdout, "  Tx hash:  %s\n", outcome.Receipt.TxHash)
			fmt.Fprintf(os.Stdout, "Verify with: %s verify --token %d\n", programName, outcome.TokenID)
			return nil
		},
	}

	cmd.Flags().StringVar(&recipient, "recipient", "", "recipient address")
	cmd.Flags().StringVar(&name, "name", "", "student name")
	cmd.Flags().StringVar(&course, "course", "", "course name")
	cmd.Flags().StringVar(&issuerName, "issuer", "", "issuing institution")
	cmd.Flags().StringVar(&issueDate, "date", "", "issue date")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for missing fields")
	return cmd
}

func promptIfEmpty(reader *bufio.Reader, label, current string) string {
	if current != "" {
		return current
	}
	fmt.Fprintf(os.Stdout, "%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return current
	}
	return strings.TrimSpace(line)
}
