package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pitchroom/application"
	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/logging"
	"github.com/felixgeelhaar/pitchroom/infrastructure/speech"
)

type playOptions struct {
	speech   bool
	audioDir string
	format   string
}

func (a *App) newPlayCmd() *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a session interactively",
		Long: `Play a pitch session in the terminal. Each line you type is one founder
message; the investors and the evaluator answer in turn. Type "exit" or
"خروج" to leave early. The final report is printed when the session ends.

With --speech, replies are synthesized to audio files and a line of the
form "@path/to/recording.wav" is transcribed and sent as your message.

Examples:
  # Play with the configured provider
  pitchroom play -c pitchroom.yaml

  # Play offline with canned replies
  pitchroom play --provider mock --storage memory

  # Play with speech
  pitchroom play -c pitchroom.yaml --speech --audio-dir ./audio`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.play(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.speech, "speech", false, "Enable speech input and output (overrides config)")
	cmd.Flags().StringVar(&opts.audioDir, "audio-dir", "audio", "Directory for synthesized replies")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Final report format (text or json)")

	return cmd
}

func (a *App) play(ctx context.Context, opts *playOptions) error {
	if _, err := report.ParseFormat(opts.format); err != nil {
		return err
	}

	rt, err := a.buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.WithoutCancel(ctx)) }()

	var voice *speech.Client
	if opts.speech || rt.cfg.Speech.Enabled {
		voice = speech.New(speech.FromConfig(rt.cfg.Speech))
		if err := os.MkdirAll(opts.audioDir, 0o755); err != nil {
			return fmt.Errorf("failed to create audio directory: %w", err)
		}
	}

	session, welcome, err := rt.manager.Start(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, welcome)

	p := &player{app: a, session: session, voice: voice, audioDir: opts.audioDir}
	if err := p.loop(ctx); err != nil {
		return err
	}

	rep, err := rt.manager.End(context.WithoutCancel(ctx), session.ID())
	if rep == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "warning: %v\n", err)
	}

	data, err := report.Export(rep, opts.format)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, string(data))
	return nil
}

// player drives one interactive session.
type player struct {
	app      *App
	session  *application.Session
	voice    *speech.Client
	audioDir string
	clips    int
}

func (p *player) loop(ctx context.Context) error {
	scanner := bufio.NewScanner(p.app.stdin)
	for p.session.IsActive() {
		fmt.Fprintf(p.app.stdout, "\n[%s] شما: ", p.session.Phase())
		if !scanner.Scan() {
			return scanner.Err()
		}

		msg, err := p.message(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintf(p.app.stderr, "error: %v\n", err)
			continue
		}
		if msg == "" {
			continue
		}

		entries, err := p.session.ProcessTurn(ctx, msg)
		switch {
		case errors.Is(err, application.ErrSessionInactive):
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(p.app.stderr, "error: %v\n", err)
			continue
		}
		for _, e := range entries {
			p.show(ctx, e)
		}
	}
	return nil
}

// message resolves an input line, transcribing "@file" when speech is on.
func (p *player) message(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if p.voice == nil || !strings.HasPrefix(line, "@") {
		return line, nil
	}

	audio, err := os.ReadFile(strings.TrimPrefix(line, "@"))
	if err != nil {
		return "", err
	}
	text, err := p.voice.Transcribe(ctx, audio)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(p.app.stdout, "%s\n", text)
	return text, nil
}

func (p *player) show(ctx context.Context, e application.Entry) {
	fmt.Fprintf(p.app.stdout, "\n%s: %s\n", e.Agent, e.Message)
	if p.voice == nil || e.Failed || e.Message == "" {
		return
	}

	speaker := speech.SpeakerSystem
	if e.Role != "" {
		speaker = speech.SpeakerFor(e.Role)
	}
	audio, err := p.voice.Synthesize(ctx, e.Message, speaker)
	if err != nil {
		logging.Warn().
			Add(logging.SessionID(p.session.ID())).
			Add(logging.Component("speech")).
			Add(logging.ErrorField(err)).
			Msg("synthesis failed")
		return
	}

	p.clips++
	name := fmt.Sprintf("%03d-%s.mp3", p.clips, e.Kind)
	path := filepath.Join(p.audioDir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		fmt.Fprintf(p.app.stderr, "error: %v\n", err)
		return
	}
	fmt.Fprintf(p.app.stdout, "  ♪ %s\n", path)
}
