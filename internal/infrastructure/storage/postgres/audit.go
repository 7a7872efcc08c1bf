package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"khaata/internal/core/id"
	"khaata/internal/domain/audit"
)

// CompressionAlgo names how the changes column of an audit row is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the change payload size above which entries are compressed.
const DefaultCompressThreshold = 10 * 1024

var _ audit.Recorder = (*AuditLog)(nil)

// AuditLog stores audit entries in sys_audit. Refund and edit entries carry
// whole line lists, so large payloads are zstd-compressed.
type AuditLog struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

// NewAuditLog creates an audit log.
func NewAuditLog(txManager *TxManager) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditLog{
		txManager: txManager,
		encoder:   encoder,
		decoder:   decoder,
		threshold: DefaultCompressThreshold,
	}, nil
}

// encode returns the plain or compressed form of changes.
func (l *AuditLog) encode(changes map[string]any) (plain, compressed []byte, algo CompressionAlgo, err error) {
	if len(changes) == 0 {
		return nil, nil, CompressionNone, nil
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return nil, nil, "", fmt.Errorf("marshal changes: %w", err)
	}
	if len(data) <= l.threshold {
		return data, nil, CompressionNone, nil
	}
	return nil, l.encoder.EncodeAll(data, nil), CompressionZstd, nil
}

func (l *AuditLog) decode(plain, compressed []byte, algo CompressionAlgo) (map[string]any, error) {
	data := plain
	if algo == CompressionZstd {
		var err error
		if data, err = l.decoder.DecodeAll(compressed, nil); err != nil {
			return nil, fmt.Errorf("decompress changes: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, nil
	}
	var changes map[string]any
	if err := json.Unmarshal(data, &changes); err != nil {
		return nil, fmt.Errorf("unmarshal changes: %w", err)
	}
	return changes, nil
}

// Record implements audit.Recorder. It writes through the transaction in ctx.
func (l *AuditLog) Record(ctx context.Context, entry audit.Entry) error {
	entry = audit.Stamp(ctx, entry)

	plain, compressed, algo, err := l.encode(entry.Changes)
	if err != nil {
		return err
	}

	_, err = l.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (
			id, entity_type, entity_id, action, user_id,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		id.New(), entry.EntityType, entry.EntityID, string(entry.Action), entry.UserID,
		plain, compressed, string(algo), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History returns the newest entries for one record.
func (l *AuditLog) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	rows, err := l.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT entity_type, entity_id, action, user_id,
		       changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			action     string
			plain      []byte
			compressed []byte
			algo       string
			createdAt  time.Time
		)
		if err := rows.Scan(&e.EntityType, &e.EntityID, &action, &e.UserID,
			&plain, &compressed, &algo, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = audit.Action(action)
		e.CreatedAt = createdAt
		if e.Changes, err = l.decode(plain, compressed, CompressionAlgo(algo)); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
