package tokens

import (
	"fmt"
	"time"

	"github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/secsweep/secsweep/internal/tokenpool"
	"github.com/secsweep/secsweep/pkg/shared/config"
	"github.com/secsweep/secsweep/pkg/shared/files"
)

var (
	AppConfig *config.Config
	logger    hclog.Logger
)

// TokensCmd reports the GitHub rate-limit status of every configured token.
var TokensCmd = &cobra.Command{
	Use:                   "tokens",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Check the rate-limit status of every configured access token",
	RunE:                  runTokensCommand,
}

// Init initializes the global configuration and logger for the command.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runTokensCommand(cmd *cobra.Command, args []string) error {
	tokensFile, err := files.ExpandPath(AppConfig.Sweeper.TokensFile)
	if err != nil {
		return fmt.Errorf("failed to resolve tokens file: %w", err)
	}
	tokens, err := files.ReadLines(tokensFile)
	if err != nil {
		return fmt.Errorf("failed to load access tokens: %w", err)
	}
	if len(tokens) == 0 {
		return fmt.Errorf("no access tokens found in %q", tokensFile)
	}

	ctx := cmd.Context()
	unusable := 0
	for _, token := range tokens {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client := github.NewClient(oauth2.NewClient(ctx, source))

		limits, _, err := client.RateLimits(ctx)
		if err != nil {
			unusable++
			logger.Error("token check failed", "token", tokenpool.Mask(token), "error", err)
			continue
		}

		core := limits.GetCore()
		logger.Info("token status",
			"token", tokenpool.Mask(token),
			"remaining", core.Remaining,
			"limit", core.Limit,
			"resets", core.Reset.Time.Format(time.RFC3339))
	}

	if unusable > 0 {
		return fmt.Errorf("%d of %d tokens are unusable", unusable, len(tokens))
	}
	logger.Info("all tokens usable", "count", len(tokens))
	return nil
}
