package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/1517005260/AShareAgent-sub001/types"
)

// ReplayDecider serves pre-recorded advisory outputs from a JSONL file, one
// object per line: {"date": "2024-01-02", "output": "..."}. Dates with no
// recorded output yield an explicit hold payload, so a replay never stalls
// on gaps.
type ReplayDecider struct {
	outputs map[string]string
}

type replayEntry struct {
	Date   string `json:"date"`
	Output string `json:"output"`
}

func NewReplayDecider(path string) (*ReplayDecider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open decisions file: %w", err)
	}
	defer f.Close()

	outputs := make(map[string]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var entry replayEntry
		if err := json.Unmarshal(text, &entry); err != nil {
			return nil, fmt.Errorf("decisions file line %d: %w", line, err)
		}
		outputs[entry.Date] = entry.Output
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read decisions file: %w", err)
	}

	return &ReplayDecider{outputs: outputs}, nil
}

func (r *ReplayDecider) Decide(_ context.Context, curDate, _ time.Time, _ types.PortfolioView) (string, error) {
	if out, ok := r.outputs[curDate.Format("2006-01-02")]; ok {
		return out, nil
	}
	return `{"action": "hold", "quantity": 0}`, nil
}
