package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/issuer-networks/wallet-callback/internal/callbacksig"
	"github.com/issuer-networks/wallet-callback/internal/keyfetch"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a signed callback payload",
	Long: `Verify the signature chain, expiry and recipient binding of a signed
callback payload and print the outcome.

Trust anchors are read from --anchors-file (a root-key JSON document) or
fetched from --anchors-url. Exits non-zero when the payload is rejected.

Example:
  callback-cli verify --payload ./callback.json --recipient 3388000000012345678 \
    --anchors-url https://pay.example.com/root-signing-keys.json`,
	RunE: runVerify,
}

var (
	payloadPath string
	recipientID string
	anchorsURL  string
	anchorsFile string
	verifyAt    string
)

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&payloadPath, "payload", "", "path to the callback payload JSON file (required)")
	verifyCmd.Flags().StringVar(&recipientID, "recipient", "", "recipient ID (issuer account number) the payload must be bound to (required)")
	verifyCmd.Flags().StringVar(&anchorsURL, "anchors-url", "", "URL of the issuer root-key document")
	verifyCmd.Flags().StringVar(&anchorsFile, "anchors-file", "", "path to a local root-key document")
	verifyCmd.Flags().StringVar(&verifyAt, "at", "", "verification time in RFC 3339 format (defaults to the current time)")
	verifyCmd.MarkFlagRequired("payload")
	verifyCmd.MarkFlagRequired("recipient")
	verifyCmd.MarkFlagsOneRequired("anchors-url", "anchors-file")
	verifyCmd.MarkFlagsMutuallyExclusive("anchors-url", "anchors-file")
}

func runVerify(cmd *cobra.Command, args []string) error {
	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	anchors, err := loadAnchors(cmd)
	if err != nil {
		return err
	}
	appLogger.Debug("trust anchors loaded", slog.Int("anchors", len(anchors)))

	now := time.Now()
	if verifyAt != "" {
		now, err = time.Parse(time.RFC3339, verifyAt)
		if err != nil {
			return fmt.Errorf("invalid --at value: %w", err)
		}
	}

	env, err := callbacksig.DecodeEnvelope(payload)
	if err != nil {
		return fmt.Errorf("payload rejected: %s: %w", callbacksig.FailureMalformedEnvelope, err)
	}

	outcome := callbacksig.Verify(env, anchors, recipientID, now)
	if !outcome.Accepted {
		appLogger.Error("payload rejected",
			slog.String("reason", string(outcome.Reason)),
			slog.String("detail", outcome.Detail))
		return fmt.Errorf("payload rejected: %s", outcome.Reason)
	}

	appLogger.Info("payload accepted")

	// print the verified message content
	var fields map[string]any
	if err := json.Unmarshal([]byte(env.SignedMessage), &fields); err == nil {
		out, _ := json.MarshalIndent(fields, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}

	return nil
}

// loadAnchors reads trust anchors from the file or URL flag.
func loadAnchors(cmd *cobra.Command) (callbacksig.TrustAnchorSet, error) {
	if anchorsFile != "" {
		data, err := os.ReadFile(anchorsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read anchors file: %w", err)
		}
		return keyfetch.ParseTrustAnchors(data)
	}

	source, err := keyfetch.NewHTTPSource(anchorsURL, 30*time.Second, appLogger)
	if err != nil {
		return nil, err
	}
	return source.TrustAnchors(cmd.Context())
}
