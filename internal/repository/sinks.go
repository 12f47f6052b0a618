package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"EarningsPull/internal/domain/models"
	pkgch "EarningsPull/pkg/clickhouse"
	pkgkafka "EarningsPull/pkg/kafka"
)

// NoopSink discards everything. Used when no downstream sink is configured.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, *models.CompanyRecord) error { return nil }
func (NoopSink) Close() error                                         { return nil }

// KafkaReactionSink publishes one message per refreshed record, keyed by
// symbol so per-company ordering holds within a partition.
type KafkaReactionSink struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaReactionSink(producer *pkgkafka.Producer, topic string) *KafkaReactionSink {
	return &KafkaReactionSink{producer: producer, topic: topic}
}

func (s *KafkaReactionSink) Publish(ctx context.Context, rec *models.CompanyRecord) error {
	return s.producer.Publish(ctx, s.topic, []byte(rec.Symbol), rec)
}

func (s *KafkaReactionSink) Close() error { return s.producer.Close() }

// CHReactionSink flattens reaction rows into a ClickHouse table for
// analytical queries across the whole index.
type CHReactionSink struct {
	db     *sql.DB
	client *pkgch.Client
	table  string
}

func NewCHReactionSink(ch *pkgch.Client, table string) *CHReactionSink {
	if table == "" {
		table = "earnings_reactions"
	}
	return &CHReactionSink{db: ch.DB(), client: ch, table: table}
}

// InitSchema creates the reaction table if it does not exist yet.
func (s *CHReactionSink) InitSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol         String,
            event_date     DateTime,
            pre_date       DateTime,
            pre_close      Float64,
            post_date      DateTime,
            post_close     Float64,
            point_change   Float64,
            percent_change Float64,
            undefined      UInt8,
            refreshed_at   DateTime
        ) ENGINE = ReplacingMergeTree(refreshed_at)
        ORDER BY (symbol, event_date)
    `, s.table)
	return s.client.InitSchema(ctx, []string{stmt})
}

func (s *CHReactionSink) Publish(ctx context.Context, rec *models.CompanyRecord) error {
	if len(rec.Reactions) == 0 {
		return nil
	}
	q := fmt.Sprintf(`
        INSERT INTO %s
        (symbol, event_date, pre_date, pre_close, post_date, post_close,
         point_change, percent_change, undefined, refreshed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, s.table)

	now := time.Now()
	for _, row := range rec.Reactions {
		undefined := uint8(0)
		if row.Undefined {
			undefined = 1
		}
		if _, err := s.db.ExecContext(ctx, q,
			rec.Symbol, row.EventDate,
			row.Pre.Date, row.Pre.Close,
			row.Post.Date, row.Post.Close,
			row.PointChange, row.PercentChange,
			undefined, now,
		); err != nil {
			return fmt.Errorf("insert reaction for %s: %w", rec.Symbol, err)
		}
	}
	return nil
}

func (s *CHReactionSink) Close() error { return s.client.Close() }
