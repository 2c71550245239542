package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/secsweep/secsweep/internal/engine"
	"github.com/secsweep/secsweep/internal/findings"
	"github.com/secsweep/secsweep/internal/ledger"
	"github.com/secsweep/secsweep/internal/notify"
	"github.com/secsweep/secsweep/internal/orchestrator"
	"github.com/secsweep/secsweep/internal/tokenpool"
	"github.com/secsweep/secsweep/pkg/shared/config"
	"github.com/secsweep/secsweep/pkg/shared/files"
	"github.com/secsweep/secsweep/pkg/shared/httpclient"
)

var (
	AppConfig *config.Config
	logger    hclog.Logger
	runOnce   bool

	exampleRunUsage = `  # Run the continuous scanning loop
  secsweep run

  # Run a single pass over the target list and exit
  secsweep run --once`
)

// RunCmd represents the continuous scanning command.
var RunCmd = &cobra.Command{
	Use:                   "run [--once]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleRunUsage,
	Short:                 "Run the continuous secret-sweeping loop",
	RunE:                  runRunCommand,
}

func init() {
	RunCmd.Flags().BoolVar(&runOnce, "once", false, "run a single pass over the target list and exit")
}

// Init initializes the global configuration and logger for the command.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runRunCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := buildNotifier()

	scheduler, err := buildScheduler(notifier)
	if err != nil {
		logger.Error("startup failed", "error", err)
		crashNotify(notifier, err)
		return err
	}

	var runErr error
	if runOnce {
		runErr = scheduler.RunOnce(ctx)
	} else {
		runErr = scheduler.Run(ctx)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("scanner crashed", "error", runErr)
		crashNotify(notifier, runErr)
		return runErr
	}

	logger.Info("scanner stopped")
	return nil
}

// crashNotify makes one best-effort attempt to report a fatal error.
func crashNotify(notifier *notify.Telegram, cause error) {
	if err := notifier.Post(fmt.Sprintf("❌ Scanner crashed: %v", cause)); err != nil {
		logger.Error("failed to send crash notification", "error", err)
	}
}

func buildNotifier() *notify.Telegram {
	client := httpclient.InitializeRestyClient(logger.Named("http"), AppConfig)
	return notify.NewTelegram(
		client,
		config.GetTelegramAPIURL(AppConfig),
		AppConfig.Telegram.BotToken,
		AppConfig.Telegram.ChatID,
		logger.Named("notify"),
	)
}

// buildScheduler loads the token pool and ledger, prepares the artifact
// folders, and wires the orchestration stack together. Any error here is a
// fatal configuration problem.
func buildScheduler(notifier *notify.Telegram) (*orchestrator.Scheduler, error) {
	sw := &AppConfig.Sweeper

	tokensFile, err := files.ExpandPath(sw.TokensFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tokens file: %w", err)
	}
	tokens, err := files.ReadLines(tokensFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load access tokens: %w", err)
	}

	pool, err := tokenpool.New(tokens, config.GetTokenCooldown(AppConfig), logger.Named("tokenpool"))
	if err != nil {
		return nil, fmt.Errorf("failed to build token pool from %q: %w", tokensFile, err)
	}

	targetsFile, err := files.ExpandPath(sw.TargetsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve targets file: %w", err)
	}
	if err := files.ValidatePath(targetsFile); err != nil {
		return nil, fmt.Errorf("target list is not readable: %w", err)
	}

	completedLedger, err := ledger.Load(sw.CompletedFile)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded state",
		"tokens", pool.Size(), "completed_targets", completedLedger.Size())

	for _, folder := range []string{sw.ResultsFolder, sw.VerifiedFolder} {
		if err := files.CreateFolderIfNotExists(folder); err != nil {
			return nil, err
		}
	}

	eng := engine.New(
		config.GetEngineBinary(AppConfig),
		config.GetEngineTimeout(AppConfig),
		AppConfig.Engine.ExtraArgs,
		logger.Named("engine"),
	)
	processor := findings.NewProcessor(sw.ResultsFolder, sw.VerifiedFolder, logger.Named("findings"))

	orch := orchestrator.New(
		pool, eng, processor, notifier, completedLedger,
		config.GetMaxRetriesPerTarget(AppConfig),
		config.GetRetryDelay(AppConfig),
		logger.Named("orchestrator"),
	)

	return orchestrator.NewScheduler(
		orch, notifier, targetsFile,
		config.GetRunDuration(AppConfig),
		config.GetBreakDuration(AppConfig),
		config.GetTargetPause(AppConfig),
		logger.Named("scheduler"),
	), nil
}
