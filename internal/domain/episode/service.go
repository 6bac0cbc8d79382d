package episode

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/jestelle/slash-podcast/internal/domain/document"
	"github.com/jestelle/slash-podcast/internal/infrastructure/logging"
	"github.com/jestelle/slash-podcast/internal/infrastructure/monitoring"
)

// Sentinel errors for deterministic HTTP mapping.
var (
	ErrNotFound      = errors.New("episode not found")
	ErrAudioNotReady = errors.New("episode audio not ready")
	ErrMissingSource = errors.New("either a document or a pdf must be provided")
	ErrNoAudio       = errors.New("no audio was generated")
)

// SourceResolver turns podcast sources into text.
type SourceResolver interface {
	FromGoogleDoc(ctx context.Context, raw string) (*document.Doc, error)
	FromPDF(ctx context.Context, reader io.ReaderAt, size int64) (string, error)
}

// DialogueWriter produces the episode script from source text.
type DialogueWriter interface {
	WriteDialogue(ctx context.Context, text string) (*Dialogue, error)
}

// SpeechSynthesizer renders one line of dialogue to mp3 bytes.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Options tunes the generation pipeline.
type Options struct {
	AudioDir    string
	Retention   time.Duration
	TTSPacing   time.Duration
	Timeout     time.Duration
	Concurrency int
}

// Service orchestrates episode generation.
type Service struct {
	repo      Repository
	resolver  SourceResolver
	dialogue  DialogueWriter
	speech    SpeechSynthesizer
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
	sem       *semaphore.Weighted
	opts      Options
	wg        sync.WaitGroup
}

// NewService wires a Service and prepares the audio directory.
func NewService(repo Repository, resolver SourceResolver, dialogue DialogueWriter, speech SpeechSynthesizer, logger *zap.Logger, opts Options) (*Service, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Minute
	}
	if err := os.MkdirAll(opts.AudioDir, 0o755); err != nil {
		return nil, err
	}
	return &Service{
		repo:      repo,
		resolver:  resolver,
		dialogue:  dialogue,
		speech:    speech,
		validator: validator.New(),
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
		sem:       semaphore.NewWeighted(int64(opts.Concurrency)),
		opts:      opts,
	}, nil
}

// CreateFromDocument accepts a Google Docs URL or ID and schedules
// generation. The document parameter is validated up front so a bad URL
// fails the request, not the background job.
func (s *Service) CreateFromDocument(ctx context.Context, req CreateRequest) (*Episode, error) {
	req.Title = strings.TrimSpace(s.sanitizer.Sanitize(req.Title))
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Document) == "" {
		return nil, ErrMissingSource
	}
	if _, err := document.ExtractID(req.Document); err != nil {
		return nil, err
	}

	ep := s.newEpisode(SourceGoogleDoc, strings.TrimSpace(req.Document), req.Title)
	if err := s.repo.Create(ctx, ep); err != nil {
		return nil, err
	}
	s.start(ep, func(ctx context.Context) (string, string, error) {
		doc, err := s.resolver.FromGoogleDoc(ctx, ep.SourceRef)
		if err != nil {
			return "", "", err
		}
		return doc.Text, doc.Title, nil
	})
	return ep, nil
}

// CreateFromPDF extracts the PDF text synchronously (it is local and
// cheap compared to generation) and schedules the rest.
func (s *Service) CreateFromPDF(ctx context.Context, title, filename string, reader io.ReaderAt, size int64) (*Episode, error) {
	title = strings.TrimSpace(s.sanitizer.Sanitize(title))
	if err := s.validator.Struct(CreateRequest{Title: title}); err != nil {
		return nil, err
	}
	text, err := s.resolver.FromPDF(ctx, reader, size)
	if err != nil {
		return nil, err
	}

	ep := s.newEpisode(SourcePDF, filename, title)
	if err := s.repo.Create(ctx, ep); err != nil {
		return nil, err
	}
	s.start(ep, func(ctx context.Context) (string, string, error) {
		return text, "", nil
	})
	return ep, nil
}

// Get returns one episode.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Episode, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns paginated episodes, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Episode, int, error) {
	return s.repo.List(ctx, filter)
}

// Audio returns the mp3 path once generation completed.
func (s *Service) Audio(ctx context.Context, id uuid.UUID) (string, error) {
	ep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if ep.Status != StatusComplete || ep.AudioPath == "" {
		return "", ErrAudioNotReady
	}
	return ep.AudioPath, nil
}

// Wait blocks until in-flight generations finish. Called on shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) newEpisode(kind, ref, title string) *Episode {
	now := time.Now().UTC()
	return &Episode{
		ID:         uuid.New(),
		Title:      title,
		SourceKind: kind,
		SourceRef:  ref,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *Service) start(ep *Episode, fetch func(ctx context.Context) (string, string, error)) {
	// Work on a copy; the caller is still serializing ep to the client.
	job := *ep
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
		defer cancel()
		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.fail(&job, err, time.Now())
			return
		}
		defer s.sem.Release(1)
		s.generate(ctx, &job, fetch)
	}()
}

func (s *Service) generate(ctx context.Context, ep *Episode, fetch func(ctx context.Context) (string, string, error)) {
	started := time.Now()
	logger := logging.WithEpisode(s.logger, ep.ID.String())

	ep.Status = StatusProcessing
	ep.UpdatedAt = time.Now().UTC()
	if err := s.persist(ep); err != nil {
		logger.Error("persisting processing state failed", zap.Error(err))
	}

	text, title, err := fetch(ctx)
	if err != nil {
		logger.Error("resolving source text failed", zap.Error(err))
		s.fail(ep, err, started)
		return
	}
	if ep.Title == "" && title != "" {
		ep.Title = strings.TrimSpace(s.sanitizer.Sanitize(title))
	}

	dialogue, err := s.dialogue.WriteDialogue(ctx, text)
	if err != nil {
		logger.Error("dialogue generation failed", zap.Error(err))
		s.fail(ep, err, started)
		return
	}

	audio, transcript, characters := s.synthesize(ctx, logger, dialogue)
	if len(audio) == 0 {
		s.fail(ep, ErrNoAudio, started)
		return
	}

	path := filepath.Join(s.opts.AudioDir, ep.ID.String()+".mp3")
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		logger.Error("writing audio file failed", zap.Error(err))
		s.fail(ep, err, started)
		return
	}

	ep.AudioPath = path
	ep.Transcript = transcript
	ep.Characters = characters
	ep.Status = StatusComplete
	ep.ErrorDetail = ""
	ep.UpdatedAt = time.Now().UTC()
	if err := s.persist(ep); err != nil {
		logger.Error("persisting completed episode failed", zap.Error(err))
		return
	}

	monitoring.ObserveEpisode(string(StatusComplete), ep.SourceKind, time.Since(started).Seconds())
	logger.Info("episode complete",
		zap.Int("lines", len(dialogue.Lines)),
		zap.Int("characters", characters),
		zap.Duration("took", time.Since(started)),
	)
}

// synthesize renders dialogue lines sequentially. TTS requests are paced
// to stay under provider rate limits; a line that still fails is skipped
// and marked in the transcript rather than sinking the episode.
func (s *Service) synthesize(ctx context.Context, logger *zap.Logger, dialogue *Dialogue) ([]byte, string, int) {
	var audio []byte
	var transcript strings.Builder
	characters := 0

	for i, line := range dialogue.Lines {
		entry := line.Speaker + ": " + line.Text
		if ctx.Err() != nil {
			// Never-attempted lines are marked too, so a timed-out
			// episode's transcript shows exactly what is missing.
			monitoring.ObserveTTS("failed")
			transcript.WriteString(entry + " [AUDIO GENERATION FAILED]\n\n")
			continue
		}
		chunk, err := s.speech.Synthesize(ctx, line.Text, line.Voice())
		if err != nil {
			logger.Error("speech synthesis failed", zap.String("speaker", line.Speaker), zap.Error(err))
			monitoring.ObserveTTS("failed")
			transcript.WriteString(entry + " [AUDIO GENERATION FAILED]\n\n")
			continue
		}
		monitoring.ObserveTTS("ok")
		audio = append(audio, chunk...)
		transcript.WriteString(entry + "\n\n")
		characters += len(line.Text)

		if i < len(dialogue.Lines)-1 && s.opts.TTSPacing > 0 {
			select {
			case <-time.After(s.opts.TTSPacing):
			case <-ctx.Done():
			}
		}
	}
	return audio, transcript.String(), characters
}

func (s *Service) fail(ep *Episode, cause error, started time.Time) {
	ep.Status = StatusFailed
	ep.ErrorDetail = cause.Error()
	ep.UpdatedAt = time.Now().UTC()
	if err := s.persist(ep); err != nil && s.logger != nil {
		s.logger.Error("persisting failed episode failed", zap.Error(err))
	}
	monitoring.ObserveEpisode(string(StatusFailed), ep.SourceKind, time.Since(started).Seconds())
	monitoring.CaptureError(cause, ep.ID.String())
}

// persist writes through a detached context; the request that spawned the
// job is long gone by the time generation finishes.
func (s *Service) persist(ep *Episode) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.repo.Update(ctx, ep)
}

// StartJanitor removes audio past the retention window and expires the
// owning episodes. Runs until ctx is done.
func (s *Service) StartJanitor(ctx context.Context) {
	if s.opts.Retention <= 0 {
		return
	}
	ticker := time.NewTicker(time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Service) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.opts.Retention)
	expired, err := s.repo.ExpireBefore(ctx, cutoff)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("episode expiry sweep failed", zap.Error(err))
		}
		return
	}
	for _, ep := range expired {
		if ep.AudioPath == "" {
			continue
		}
		if err := os.Remove(ep.AudioPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("removing expired audio failed",
				zap.String("path", ep.AudioPath), zap.Error(err))
		}
	}
	if len(expired) > 0 && s.logger != nil {
		s.logger.Info("expired episodes swept", zap.Int("count", len(expired)))
	}
}
