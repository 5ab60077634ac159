package cli

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/issuer-networks/wallet-callback/internal/callbacksig"
	"github.com/issuer-networks/wallet-callback/internal/keyfetch"
)

// anchorsCmd represents the anchors command
var anchorsCmd = &cobra.Command{
	Use:   "anchors",
	Short: "List the published trust anchors",
	Long: `Fetch the issuer root-key document and print the trust anchors it
publishes for the signing-only protocol.

Example:
  callback-cli anchors --url https://pay.example.com/root-signing-keys.json`,
	RunE: runAnchors,
}

var anchorsListURL string

func init() {
	rootCmd.AddCommand(anchorsCmd)

	anchorsCmd.Flags().StringVar(&anchorsListURL, "url", "", "URL of the issuer root-key document (required)")
	anchorsCmd.MarkFlagRequired("url")
}

func runAnchors(cmd *cobra.Command, args []string) error {
	source, err := keyfetch.NewHTTPSource(anchorsListURL, 30*time.Second, appLogger)
	if err != nil {
		return err
	}

	anchors, err := source.TrustAnchors(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch trust anchors: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d trust anchor(s) for %s:\n", len(anchors), callbacksig.ProtocolSigningOnly)
	for i, anchor := range anchors {
		fingerprint, err := anchorFingerprint(anchor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  [%d] sha256:%s\n", i, fingerprint)
	}

	return nil
}

// anchorFingerprint returns the base64 SHA-256 of the anchor's DER key
// bytes, a stable short identifier for operators comparing key sets.
func anchorFingerprint(anchor callbacksig.TrustAnchor) (string, error) {
	der, err := base64.StdEncoding.DecodeString(anchor.PublicKeyBase64)
	if err != nil {
		return "", fmt.Errorf("trust anchor is not valid base64: %w", err)
	}
	sum := sha256.Sum256(der)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}
