// Package llm wraps single request/response calls to the external
// text-generation CLI. One call spawns one subprocess; there is no retry and
// no streaming back to the caller.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Usage carries the token and cost accounting of one model call. Every field
// defaults to zero when the CLI output omits or mangles it.
type Usage struct {
	InputTokens         int
	OutputTokens        int
	CacheCreationTokens int
	CacheReadTokens     int
	CostUSD             float64
}

// Add accumulates another call's usage into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationTokens += other.CacheCreationTokens
	u.CacheReadTokens += other.CacheReadTokens
	u.CostUSD += other.CostUSD
}

// Result is the normalized outcome of one CLI invocation.
type Result struct {
	Output      string
	Stderr      string
	ExitCode    int
	DurationSec float64
	Usage       Usage
}

// Failed reports whether the call is unusable: non-zero exit or empty output.
func (r *Result) Failed() bool {
	return r.ExitCode != 0 || strings.TrimSpace(r.Output) == ""
}

// Diagnostic returns the most useful error text the process produced.
func (r *Result) Diagnostic() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(r.Output); s != "" {
		return s
	}
	return fmt.Sprintf("process exited with code %d", r.ExitCode)
}

// Options bound a single invocation.
type Options struct {
	SystemPrompt string
	MaxTurns     int
	Timeout      time.Duration
}

// ImageSource is one attached image for a vision-mode call.
type ImageSource struct {
	MediaType string
	Data      []byte
}

const defaultTimeout = 180 * time.Second

// CLIInvoker shells out to the claude CLI binary.
type CLIInvoker struct {
	bin    string
	model  string
	logger zerolog.Logger
}

// NewCLIInvoker constructs an invoker for the given binary. Model may be
// empty to use the CLI's default.
func NewCLIInvoker(bin, model string, logger zerolog.Logger) *CLIInvoker {
	if strings.TrimSpace(bin) == "" {
		bin = "claude"
	}
	return &CLIInvoker{bin: bin, model: model, logger: logger}
}

// Invoke performs one text-only call. The prompt is passed as the trailing
// argument and the CLI is asked for a single JSON envelope on stdout.
func (c *CLIInvoker) Invoke(ctx context.Context, prompt string, opts Options) (*Result, error) {
	args := append(c.commonArgs(opts), "--output-format", "json", prompt)
	res, err := c.run(ctx, opts, args, nil)
	if err != nil {
		return nil, err
	}
	parseJSONEnvelope(res)
	return res, nil
}

// InvokeVision performs one call with embedded images. The request is a
// single structured user message written to stdin before it is closed; the
// CLI answers with one JSON object per line.
func (c *CLIInvoker) InvokeVision(ctx context.Context, prompt string, images []ImageSource, opts Options) (*Result, error) {
	args := append(c.commonArgs(opts),
		"--input-format", "stream-json",
		"--output-format", "stream-json",
		"--verbose",
	)
	stdin, err := visionMessage(prompt, images)
	if err != nil {
		return nil, err
	}
	res, err := c.run(ctx, opts, args, stdin)
	if err != nil {
		return nil, err
	}
	parseStreamEnvelope(res)
	return res, nil
}

func (c *CLIInvoker) commonArgs(opts Options) []string {
	args := []string{"--print"}
	if c.model != "" {
		args = append(args, "--model", c.model)
	}
	if opts.SystemPrompt != "" {
		args = append(args, "--append-system-prompt", opts.SystemPrompt)
	}
	if opts.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(opts.MaxTurns))
	}
	return args
}

// run executes the CLI once. The context deadline is the only timeout: the
// spawned process is killed by exec when it elapses, there is no separate
// timer racing the process.
func (c *CLIInvoker) run(ctx context.Context, opts Options, args []string, stdin []byte) (*Result, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := &Result{
		Output:      stdout.String(),
		Stderr:      stderr.String(),
		DurationSec: elapsed.Seconds(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// Spawn failure (missing binary, permission): the one rejection path.
			return nil, fmt.Errorf("llm: spawn %s: %w", c.bin, err)
		}
		res.ExitCode = exitErr.ExitCode()
		if ctx.Err() == context.DeadlineExceeded && res.Stderr == "" {
			res.Stderr = fmt.Sprintf("timed out after %s", timeout)
		}
	}
	c.logger.Debug().
		Int("exit_code", res.ExitCode).
		Float64("duration_sec", res.DurationSec).
		Msg("llm: call finished")
	return res, nil
}

type resultEnvelope struct {
	Type         string  `json:"type"`
	Result       string  `json:"result"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	Usage        struct {
		InputTokens              int `json:"input_tokens"`
		OutputTokens             int `json:"output_tokens"`
		CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
		CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	} `json:"usage"`
}

// parseJSONEnvelope extracts the result text and usage from a single JSON
// document. On parse failure, or when the document is not a result envelope,
// the raw stdout stays as the output with zero usage.
func parseJSONEnvelope(res *Result) {
	var env resultEnvelope
	if err := json.Unmarshal([]byte(res.Output), &env); err != nil {
		return
	}
	if env.Type != "result" {
		return
	}
	applyEnvelope(res, env)
}

// parseStreamEnvelope scans JSON-lines output for the terminal result object.
func parseStreamEnvelope(res *Result) {
	for _, line := range strings.Split(res.Output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var env resultEnvelope
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			continue
		}
		if env.Type != "result" {
			continue
		}
		applyEnvelope(res, env)
		return
	}
}

// applyEnvelope replaces the raw stdout with the envelope's result text.
// An empty result is kept as-is so Failed() treats the call as unusable
// instead of surfacing the envelope JSON as model output.
func applyEnvelope(res *Result, env resultEnvelope) {
	res.Output = env.Result
	res.Usage = Usage{
		InputTokens:         env.Usage.InputTokens,
		OutputTokens:        env.Usage.OutputTokens,
		CacheCreationTokens: env.Usage.CacheCreationInputTokens,
		CacheReadTokens:     env.Usage.CacheReadInputTokens,
		CostUSD:             env.TotalCostUSD,
	}
}

func visionMessage(prompt string, images []ImageSource) ([]byte, error) {
	type imageSource struct {
		Type      string `json:"type"`
		MediaType string `json:"media_type"`
		Data      string `json:"data"`
	}
	type contentBlock struct {
		Type   string       `json:"type"`
		Text   string       `json:"text,omitempty"`
		Source *imageSource `json:"source,omitempty"`
	}
	blocks := []contentBlock{{Type: "text", Text: prompt}}
	for _, img := range images {
		mediaType := img.MediaType
		if mediaType == "" {
			mediaType = "image/jpeg"
		}
		blocks = append(blocks, contentBlock{
			Type: "image",
			Source: &imageSource{
				Type:      "base64",
				MediaType: mediaType,
				Data:      base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	msg := map[string]any{
		"type": "user",
		"message": map[string]any{
			"role":    "user",
			"content": blocks,
		},
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("llm: encode vision message: %w", err)
	}
	return append(encoded, '\n'), nil
}
