package findings

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/secsweep/secsweep/pkg/shared/files"
)

// Report is the outcome of processing one scan's raw output.
type Report struct {
	All      []Finding
	Verified []Finding
	Dropped  int
}

// Processor parses raw engine output and persists per-target artifacts.
type Processor struct {
	resultsFolder  string
	verifiedFolder string
	logger         hclog.Logger
}

// NewProcessor creates a processor writing artifacts into the given folders.
func NewProcessor(resultsFolder, verifiedFolder string, logger hclog.Logger) *Processor {
	return &Processor{
		resultsFolder:  resultsFolder,
		verifiedFolder: verifiedFolder,
		logger:         logger,
	}
}

// Process splits rawOutput into one-record-per-line findings, partitions the
// alertable subset, and persists both artifacts. Malformed lines are logged
// and counted, never fatal; an artifact write failure propagates because
// silently losing findings is not acceptable.
func (p *Processor) Process(target, rawOutput string) (Report, error) {
	report := Report{All: []Finding{}}

	for _, line := range strings.Split(rawOutput, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var f Finding
		if err := json.Unmarshal([]byte(line), &f); err != nil {
			report.Dropped++
			p.logger.Debug("skipping invalid output line", "target", target, "error", err)
			continue
		}
		report.All = append(report.All, f)
		if f.Alertable() {
			report.Verified = append(report.Verified, f)
		}
	}

	p.logger.Info("parsed engine output",
		"target", target,
		"findings", len(report.All),
		"verified", len(report.Verified),
		"dropped_lines", report.Dropped)

	if err := p.writeArtifact(p.resultsFolder, target+".json", report.All); err != nil {
		return report, fmt.Errorf("failed to persist raw results for %q: %w", target, err)
	}

	if len(report.Verified) > 0 {
		if err := p.writeArtifact(p.verifiedFolder, target+".verified.json", report.Verified); err != nil {
			return report, fmt.Errorf("failed to persist verified results for %q: %w", target, err)
		}
	}

	return report, nil
}

func (p *Processor) writeArtifact(folder, name string, records []Finding) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling findings: %w", err)
	}
	return files.WriteJSONFile(filepath.Join(folder, name), data)
}
