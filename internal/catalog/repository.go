package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modelgate/modelgate/internal/shared"
)

// RepositoryPort defines persistence for the four gateway catalogs.
type RepositoryPort interface {
	ListChannels(ctx context.Context) ([]Channel, error)
	GetChannel(ctx context.Context, id int64) (Channel, error)
	CreateChannel(ctx context.Context, ch Channel) (Channel, error)
	UpdateChannel(ctx context.Context, ch Channel) (Channel, error)
	DeleteChannel(ctx context.Context, id int64) error

	ListTools(ctx context.Context) ([]Tool, error)
	GetTool(ctx context.Context, id int64) (Tool, error)
	CreateTool(ctx context.Context, t Tool) (Tool, error)

	ListProcessors(ctx context.Context) ([]Processor, error)
	GetProcessor(ctx context.Context, id int64) (Processor, error)
	CreateProcessor(ctx context.Context, p Processor) (Processor, error)
	DeleteProcessor(ctx context.Context, id int64) error

	ListPresets(ctx context.Context) ([]Preset, error)
	GetPreset(ctx context.Context, id int64) (Preset, error)
	CreatePreset(ctx context.Context, p Preset) (Preset, error)
	DeletePreset(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const channelColumns = `id, name, description, COALESCE(code, ''), model_type, embedded, COALESCE(uploader_id, ''), adapter_type, models, base_url, api_key, created_at, updated_at`

func scanChannel(row pgx.Row) (Channel, error) {
	var ch Channel
	err := row.Scan(&ch.ID, &ch.Name, &ch.Description, &ch.Code, &ch.ModelType, &ch.Embedded, &ch.UploaderID,
		&ch.AdapterType, &ch.Models, &ch.BaseURL, &ch.APIKey, &ch.CreatedAt, &ch.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Channel{}, shared.ErrNotFound
	}
	return ch, err
}

// ListChannels returns all channels.
func (r *Repository) ListChannels(ctx context.Context) ([]Channel, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+channelColumns+` FROM channels ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var channels []Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// GetChannel fetches one channel.
func (r *Repository) GetChannel(ctx context.Context, id int64) (Channel, error) {
	return scanChannel(r.pool.QueryRow(ctx, `SELECT `+channelColumns+` FROM channels WHERE id = $1`, id))
}

// CreateChannel inserts a channel and returns the stored row.
func (r *Repository) CreateChannel(ctx context.Context, ch Channel) (Channel, error) {
	return scanChannel(r.pool.QueryRow(ctx, `
		INSERT INTO channels (name, description, code, model_type, embedded, uploader_id, adapter_type, models, base_url, api_key, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, $8, $9, $10, NOW(), NOW())
		RETURNING `+channelColumns,
		ch.Name, ch.Description, ch.Code, ch.ModelType, ch.Embedded, ch.UploaderID, ch.AdapterType, ch.Models, ch.BaseURL, ch.APIKey))
}

// UpdateChannel overwrites the mutable channel fields.
func (r *Repository) UpdateChannel(ctx context.Context, ch Channel) (Channel, error) {
	return scanChannel(r.pool.QueryRow(ctx, `
		UPDATE channels
		SET name = $2, description = $3, code = NULLIF($4, ''), model_type = $5, embedded = $6,
		    adapter_type = $7, models = $8, base_url = $9, api_key = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING `+channelColumns,
		ch.ID, ch.Name, ch.Description, ch.Code, ch.ModelType, ch.Embedded, ch.AdapterType, ch.Models, ch.BaseURL, ch.APIKey))
}

// DeleteChannel removes a channel.
func (r *Repository) DeleteChannel(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	return err
}

const toolColumns = `id, name, description, COALESCE(code, ''), model_type, embedded, COALESCE(uploader_id, ''), permission, status, created_at, updated_at`

func scanTool(row pgx.Row) (Tool, error) {
	var t Tool
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Code, &t.ModelType, &t.Embedded, &t.UploaderID,
		&t.Permission, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tool{}, shared.ErrNotFound
	}
	return t, err
}

// ListTools returns all tools.
func (r *Repository) ListTools(ctx context.Context) ([]Tool, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+toolColumns+` FROM tools ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tools []Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// GetTool fetches one tool.
func (r *Repository) GetTool(ctx context.Context, id int64) (Tool, error) {
	return scanTool(r.pool.QueryRow(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = $1`, id))
}

// CreateTool inserts a tool and returns the stored row.
func (r *Repository) CreateTool(ctx context.Context, t Tool) (Tool, error) {
	return scanTool(r.pool.QueryRow(ctx, `
		INSERT INTO tools (name, description, code, model_type, embedded, uploader_id, permission, status, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, $8, NOW(), NOW())
		RETURNING `+toolColumns,
		t.Name, t.Description, t.Code, t.ModelType, t.Embedded, t.UploaderID, t.Permission, t.Status))
}

const processorColumns = `id, name, description, COALESCE(code, ''), model_type, embedded, COALESCE(uploader_id, ''), type, created_at, updated_at`

func scanProcessor(row pgx.Row) (Processor, error) {
	var p Processor
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Code, &p.ModelType, &p.Embedded, &p.UploaderID,
		&p.Type, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Processor{}, shared.ErrNotFound
	}
	return p, err
}

// ListProcessors returns all processors.
func (r *Repository) ListProcessors(ctx context.Context) ([]Processor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+processorColumns+` FROM processors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var processors []Processor
	for rows.Next() {
		p, err := scanProcessor(rows)
		if err != nil {
			return nil, err
		}
		processors = append(processors, p)
	}
	return processors, rows.Err()
}

// GetProcessor fetches one processor.
func (r *Repository) GetProcessor(ctx context.Context, id int64) (Processor, error) {
	return scanProcessor(r.pool.QueryRow(ctx, `SELECT `+processorColumns+` FROM processors WHERE id = $1`, id))
}

// CreateProcessor inserts a processor and returns the stored row.
func (r *Repository) CreateProcessor(ctx context.Context, p Processor) (Processor, error) {
	return scanProcessor(r.pool.QueryRow(ctx, `
		INSERT INTO processors (name, description, code, model_type, embedded, uploader_id, type, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, NOW(), NOW())
		RETURNING `+processorColumns,
		p.Name, p.Description, p.Code, p.ModelType, p.Embedded, p.UploaderID, p.Type))
}

// DeleteProcessor removes a processor.
func (r *Repository) DeleteProcessor(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM processors WHERE id = $1`, id)
	return err
}

const presetColumns = `id, name, description, COALESCE(code, ''), model_type, embedded, COALESCE(uploader_id, ''), COALESCE(prefix, ''), prompt, temperature, max_token, COALESCE(model, ''), created_at, updated_at`

func scanPreset(row pgx.Row) (Preset, error) {
	var p Preset
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Code, &p.ModelType, &p.Embedded, &p.UploaderID,
		&p.Prefix, &p.Prompt, &p.Temperature, &p.MaxToken, &p.Model, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Preset{}, shared.ErrNotFound
	}
	return p, err
}

// ListPresets returns all presets.
func (r *Repository) ListPresets(ctx context.Context) ([]Preset, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+presetColumns+` FROM presets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var presets []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// GetPreset fetches one preset.
func (r *Repository) GetPreset(ctx context.Context, id int64) (Preset, error) {
	return scanPreset(r.pool.QueryRow(ctx, `SELECT `+presetColumns+` FROM presets WHERE id = $1`, id))
}

// CreatePreset inserts a preset and returns the stored row.
func (r *Repository) CreatePreset(ctx context.Context, p Preset) (Preset, error) {
	return scanPreset(r.pool.QueryRow(ctx, `
		INSERT INTO presets (name, description, code, model_type, embedded, uploader_id, prefix, prompt, temperature, max_token, model, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, NULLIF($11, ''), NOW(), NOW())
		RETURNING `+presetColumns,
		p.Name, p.Description, p.Code, p.ModelType, p.Embedded, p.UploaderID, p.Prefix, p.Prompt, p.Temperature, p.MaxToken, p.Model))
}

// DeletePreset removes a preset.
func (r *Repository) DeletePreset(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM presets WHERE id = $1`, id)
	return err
}

var _ RepositoryPort = (*Repository)(nil)
