package catalog

import (
	"context"
	"errors"
	"strings"
)

// Service applies the little business logic the catalogs have: required
// fields and stamping the uploader.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListChannels returns all channels.
func (s *Service) ListChannels(ctx context.Context) ([]Channel, error) {
	return s.repo.ListChannels(ctx)
}

// GetChannel fetches one channel.
func (s *Service) GetChannel(ctx context.Context, id int64) (Channel, error) {
	return s.repo.GetChannel(ctx, id)
}

// CreateChannel stores a channel uploaded by uploaderID.
func (s *Service) CreateChannel(ctx context.Context, uploaderID string, ch Channel) (Channel, error) {
	if strings.TrimSpace(ch.Name) == "" {
		return Channel{}, errors.New("catalog: channel name required")
	}
	ch.UploaderID = uploaderID
	return s.repo.CreateChannel(ctx, ch)
}

// UpdateChannel merges the request onto the stored row and saves it.
func (s *Service) UpdateChannel(ctx context.Context, id int64, apply func(*Channel)) (Channel, error) {
	ch, err := s.repo.GetChannel(ctx, id)
	if err != nil {
		return Channel{}, err
	}
	apply(&ch)
	return s.repo.UpdateChannel(ctx, ch)
}

// DeleteChannel removes a channel.
func (s *Service) DeleteChannel(ctx context.Context, id int64) error {
	return s.repo.DeleteChannel(ctx, id)
}

// ListTools returns all tools.
func (s *Service) ListTools(ctx context.Context) ([]Tool, error) {
	return s.repo.ListTools(ctx)
}

// GetTool fetches one tool.
func (s *Service) GetTool(ctx context.Context, id int64) (Tool, error) {
	return s.repo.GetTool(ctx, id)
}

// CreateTool stores a tool uploaded by uploaderID.
func (s *Service) CreateTool(ctx context.Context, uploaderID string, t Tool) (Tool, error) {
	if strings.TrimSpace(t.Name) == "" {
		return Tool{}, errors.New("catalog: tool name required")
	}
	t.UploaderID = uploaderID
	return s.repo.CreateTool(ctx, t)
}

// ListProcessors returns all processors.
func (s *Service) ListProcessors(ctx context.Context) ([]Processor, error) {
	return s.repo.ListProcessors(ctx)
}

// GetProcessor fetches one processor.
func (s *Service) GetProcessor(ctx context.Context, id int64) (Processor, error) {
	return s.repo.GetProcessor(ctx, id)
}

// CreateProcessor stores a processor uploaded by uploaderID.
func (s *Service) CreateProcessor(ctx context.Context, uploaderID string, p Processor) (Processor, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Processor{}, errors.New("catalog: processor name required")
	}
	p.UploaderID = uploaderID
	return s.repo.CreateProcessor(ctx, p)
}

// DeleteProcessor removes a processor.
func (s *Service) DeleteProcessor(ctx context.Context, id int64) error {
	return s.repo.DeleteProcessor(ctx, id)
}

// ListPresets returns all presets.
func (s *Service) ListPresets(ctx context.Context) ([]Preset, error) {
	return s.repo.ListPresets(ctx)
}

// GetPreset fetches one preset.
func (s *Service) GetPreset(ctx context.Context, id int64) (Preset, error) {
	return s.repo.GetPreset(ctx, id)
}

// CreatePreset stores a preset uploaded by uploaderID.
func (s *Service) CreatePreset(ctx context.Context, uploaderID string, p Preset) (Preset, error) {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Prompt) == "" {
		return Preset{}, errors.New("catalog: preset name and prompt required")
	}
	p.UploaderID = uploaderID
	return s.repo.CreatePreset(ctx, p)
}

// DeletePreset removes a preset.
func (s *Service) DeletePreset(ctx context.Context, id int64) error {
	return s.repo.DeletePreset(ctx, id)
}
