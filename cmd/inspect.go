// File: cmd/inspect.go
package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sbenkov/aviator/internal/browser"
	"github.com/sbenkov/aviator/internal/observability"
)

// newInspectCmd creates the `inspect` command: navigate to a URL, index the
// page and print what an agent would see.
func newInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect [url]",
		Short: "Navigates to a URL and prints the indexed interactable elements",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so they override config file and env values.
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			target := args[0]

			timeout, err := cmd.Flags().GetDuration("timeout")
			if err != nil {
				return err
			}
			withContent, err := cmd.Flags().GetBool("content")
			if err != nil {
				return err
			}
			screenshotPath, err := cmd.Flags().GetString("screenshot")
			if err != nil {
				return err
			}

			// Flag overrides landed in viper during PreRunE; rebuild the
			// typed config so they take effect.
			cfg, err := configFromViper()
			if err != nil {
				return err
			}

			manager := browser.NewManager(cfg, logger)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := manager.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Session shutdown incomplete.", zap.Error(err))
				}
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			session := manager.NewSession()
			if err := session.GoToURL(ctx, target); err != nil {
				return fmt.Errorf("opening %s: %w", target, err)
			}

			state, err := session.RefreshState(ctx)
			if err != nil {
				return fmt.Errorf("indexing %s: %w", target, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "URL:   %s\n", state.URL)
			fmt.Fprintf(out, "Title: %s\n", state.Title)
			fmt.Fprintf(out, "Interactable elements (%d):\n", len(state.Items))
			if len(state.Items) > 0 {
				fmt.Fprintln(out, state.DescribeElements())
			}

			if withContent {
				text, err := session.ExtractContent(ctx)
				if err != nil {
					return fmt.Errorf("extracting content: %w", err)
				}
				fmt.Fprintf(out, "\nPage content:\n%s\n", text)
			}

			if screenshotPath != "" {
				encoded, err := session.CaptureScreenshot(ctx, true)
				if err != nil {
					return fmt.Errorf("capturing screenshot: %w", err)
				}
				shot, err := base64.StdEncoding.DecodeString(encoded)
				if err != nil {
					return fmt.Errorf("decoding screenshot: %w", err)
				}
				if err := os.WriteFile(screenshotPath, shot, 0o644); err != nil {
					return fmt.Errorf("writing screenshot: %w", err)
				}
				logger.Info("Screenshot written.", zap.String("path", screenshotPath))
			}
			return nil
		},
	}

	inspectCmd.Flags().Bool("headless", true, "run the browser headless")
	inspectCmd.Flags().Bool("content", false, "also print the page's visible text")
	inspectCmd.Flags().String("screenshot", "", "write a full-page screenshot to this file")
	inspectCmd.Flags().Duration("timeout", 60*time.Second, "overall deadline for the inspection")

	return inspectCmd
}
