// keyctl creates, rotates and inspects keyset files. Keysets are written
// unencrypted, which is why every command routes through the cleartext
// entry points; encryption at rest is the caller's problem.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glinharesb/keyset-go/aead"
	"github.com/glinharesb/keyset-go/event"
	"github.com/glinharesb/keyset-go/keyset"
	"github.com/glinharesb/keyset-go/keysetproto"
	"github.com/glinharesb/keyset-go/mac"
	"github.com/glinharesb/keyset-go/signature"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("keyctl", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "keyctl",
		Short:        "Manage keyset files",
		SilenceUsage: true,
	}

	viper.SetConfigName(".keyctl")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("KEYCTL")
	viper.AutomaticEnv()
	viper.SetDefault("template", "hmac-sha256")
	_ = viper.ReadInConfig() // config file is optional

	root.AddCommand(newCreateCmd(), newRotateCmd(), newInfoCmd())
	return root
}

func newCreateCmd() *cobra.Command {
	var template string
	cmd := &cobra.Command{
		Use:   "create <keyset-file>",
		Short: "Create a keyset with one fresh key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if template == "" {
				template = viper.GetString("template")
			}
			format, err := formatFor(template)
			if err != nil {
				return err
			}

			events := event.NewLogger(64, os.Stderr)
			defer events.Close()

			m := keyset.NewManager(format, keyset.WithEventLogger(events))
			if err := m.Rotate(); err != nil {
				return err
			}
			h, err := m.Handle()
			if err != nil {
				return err
			}
			if err := keyset.WriteCleartextFile(h, args[0]); err != nil {
				return err
			}
			slog.Info("keyset created", "path", args[0], "template", template)
			return nil
		},
	}
	cmd.Flags().StringVar(&template, "template", "", "key template (hmac-sha256, aes-gcm, ecdsa-p256, ed25519)")
	return cmd
}

func newRotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate <keyset-file>",
		Short: "Add a fresh primary key to an existing keyset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := keyset.ReadCleartextFile(args[0])
			if err != nil {
				return err
			}
			format, err := formatFromKeyset(h.Keyset())
			if err != nil {
				return err
			}

			events := event.NewLogger(64, os.Stderr)
			defer events.Close()

			m := keyset.NewManager(format, keyset.WithHandle(h), keyset.WithEventLogger(events))
			if err := m.Rotate(); err != nil {
				return err
			}
			rotated, err := m.Handle()
			if err != nil {
				return err
			}
			if err := keyset.WriteCleartextFile(rotated, args[0]); err != nil {
				return err
			}
			slog.Info("keyset rotated", "path", args[0], "keys", len(rotated.Keyset().Keys))
			return nil
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <keyset-file>",
		Short: "Print keyset metadata (never key material)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := keyset.ReadCleartextFile(args[0])
			if err != nil {
				return err
			}
			ks := h.Keyset()
			fmt.Printf("primary key id: %d\n", ks.PrimaryKeyID)
			for _, k := range ks.Keys {
				fmt.Printf("  key %d: %s %s %s\n", k.KeyID, k.KeyData.TypeURL, k.Status, k.OutputPrefixType)
			}
			return nil
		},
	}
}

func formatFor(template string) (*keysetproto.KeyFormat, error) {
	switch template {
	case "hmac-sha256":
		return mac.DefaultKeyFormat(), nil
	case "aes-gcm":
		return aead.DefaultKeyFormat(), nil
	case "ecdsa-p256":
		return signature.ECDSAKeyFormat(), nil
	case "ed25519":
		return signature.Ed25519KeyFormat(), nil
	default:
		return nil, fmt.Errorf("unknown key template %q", template)
	}
}

// formatFromKeyset rebuilds the key format for rotation from the primary
// key's type URL, falling back to the family defaults for parameters.
func formatFromKeyset(ks *keysetproto.Keyset) (*keysetproto.KeyFormat, error) {
	for _, k := range ks.Keys {
		if k.KeyID == ks.PrimaryKeyID {
			return &keysetproto.KeyFormat{TypeURL: k.KeyData.TypeURL}, nil
		}
	}
	return nil, fmt.Errorf("%w: primary key id %d not found", keysetproto.ErrInvalidKeyset, ks.PrimaryKeyID)
}
