package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelgate/modelgate/internal/shared"
)

type mockRepository struct {
	channels   map[int64]Channel
	tools      map[int64]Tool
	processors map[int64]Processor
	presets    map[int64]Preset
	next       int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		channels:   make(map[int64]Channel),
		tools:      make(map[int64]Tool),
		processors: make(map[int64]Processor),
		presets:    make(map[int64]Preset),
		next:       1,
	}
}

func (m *mockRepository) id() int64 {
	id := m.next
	m.next++
	return id
}

func (m *mockRepository) ListChannels(ctx context.Context) ([]Channel, error) {
	var out []Channel
	for _, ch := range m.channels {
		out = append(out, ch)
	}
	return out, nil
}

func (m *mockRepository) GetChannel(ctx context.Context, id int64) (Channel, error) {
	ch, ok := m.channels[id]
	if !ok {
		return Channel{}, shared.ErrNotFound
	}
	return ch, nil
}

func (m *mockRepository) CreateChannel(ctx context.Context, ch Channel) (Channel, error) {
	ch.ID = m.id()
	m.channels[ch.ID] = ch
	return ch, nil
}

func (m *mockRepository) UpdateChannel(ctx context.Context, ch Channel) (Channel, error) {
	if _, ok := m.channels[ch.ID]; !ok {
		return Channel{}, shared.ErrNotFound
	}
	m.channels[ch.ID] = ch
	return ch, nil
}

func (m *mockRepository) DeleteChannel(ctx context.Context, id int64) error {
	delete(m.channels, id)
	return nil
}

func (m *mockRepository) ListTools(ctx context.Context) ([]Tool, error) {
	var out []Tool
	for _, t := range m.tools {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockRepository) GetTool(ctx context.Context, id int64) (Tool, error) {
	t, ok := m.tools[id]
	if !ok {
		return Tool{}, shared.ErrNotFound
	}
	return t, nil
}

func (m *mockRepository) CreateTool(ctx context.Context, t Tool) (Tool, error) {
	t.ID = m.id()
	m.tools[t.ID] = t
	return t, nil
}

func (m *mockRepository) ListProcessors(ctx context.Context) ([]Processor, error) {
	var out []Processor
	for _, p := range m.processors {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepository) GetProcessor(ctx context.Context, id int64) (Processor, error) {
	p, ok := m.processors[id]
	if !ok {
		return Processor{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) CreateProcessor(ctx context.Context, p Processor) (Processor, error) {
	p.ID = m.id()
	m.processors[p.ID] = p
	return p, nil
}

func (m *mockRepository) DeleteProcessor(ctx context.Context, id int64) error {
	delete(m.processors, id)
	return nil
}

func (m *mockRepository) ListPresets(ctx context.Context) ([]Preset, error) {
	var out []Preset
	for _, p := range m.presets {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepository) GetPreset(ctx context.Context, id int64) (Preset, error) {
	p, ok := m.presets[id]
	if !ok {
		return Preset{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) CreatePreset(ctx context.Context, p Preset) (Preset, error) {
	p.ID = m.id()
	m.presets[p.ID] = p
	return p, nil
}

func (m *mockRepository) DeletePreset(ctx context.Context, id int64) error {
	delete(m.presets, id)
	return nil
}

func TestCreateChannelStampsUploader(t *testing.T) {
	svc := NewService(newMockRepository())

	ch := Channel{Meta: Meta{Name: "openai-primary"}, AdapterType: "openai"}
	stored, err := svc.CreateChannel(context.Background(), "u1", ch)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UploaderID)
	assert.NotZero(t, stored.ID)
}

func TestCreateChannelRequiresName(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.CreateChannel(context.Background(), "u1", Channel{Meta: Meta{Name: "  "}})
	require.Error(t, err)
}

func TestUpdateChannelMergesOntoStoredRow(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	stored, err := svc.CreateChannel(context.Background(), "u1", Channel{
		Meta:        Meta{Name: "openai-primary"},
		AdapterType: "openai",
		BaseURL:     "https://api.openai.com/v1",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateChannel(context.Background(), stored.ID, func(ch *Channel) {
		ch.BaseURL = "https://proxy.internal/v1"
	})
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.internal/v1", updated.BaseURL)
	assert.Equal(t, "openai", updated.AdapterType)
	assert.Equal(t, "u1", updated.UploaderID)
}

func TestUpdateChannelMissing(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.UpdateChannel(context.Background(), 99, func(ch *Channel) {})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreatePresetRequiresNameAndPrompt(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.CreatePreset(context.Background(), "u1", Preset{Meta: Meta{Name: "summarise"}})
	require.Error(t, err)

	stored, err := svc.CreatePreset(context.Background(), "u1", Preset{Meta: Meta{Name: "summarise"}, Prompt: "Summarise the input."})
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UploaderID)
}

func TestCreateToolAndProcessorStampUploader(t *testing.T) {
	svc := NewService(newMockRepository())

	tool, err := svc.CreateTool(context.Background(), "u1", Tool{Meta: Meta{Name: "search"}, Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, "u1", tool.UploaderID)

	proc, err := svc.CreateProcessor(context.Background(), "u1", Processor{Meta: Meta{Name: "redact"}, Type: "pre"})
	require.NoError(t, err)
	assert.Equal(t, "u1", proc.UploaderID)
}
