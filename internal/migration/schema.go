package migration

import (
	"fmt"

	"chat-archive/pkg/partition"
)

const (
	TableName = "chat_messages"

	UserCreatedIndex = "ix_chat_messages_user_created"
	CreatedIndex     = "ix_chat_messages_created"
)

// ChatMessagesUp renders the DDL for the partitioned archive table: the
// parent, one partition per planned month, the default partition and the two
// descending indexes. Indexes declared on the parent cascade to every
// partition.
func ChatMessagesUp(plan []partition.Partition) []string {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		fmt.Sprintf(`CREATE TABLE %s (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	user_id text NOT NULL,
	name text NOT NULL,
	question text NOT NULL,
	answer text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (id, created_at)
) PARTITION BY RANGE (created_at)`, TableName),
	}

	for _, p := range plan {
		stmts = append(stmts, fmt.Sprintf(
			`CREATE TABLE %s PARTITION OF %s FOR VALUES FROM ('%s') TO ('%s')`,
			p.Name, TableName, p.Start.Format(partition.DateLayout), p.End.Format(partition.DateLayout),
		))
	}

	stmts = append(stmts,
		fmt.Sprintf(`CREATE TABLE %s PARTITION OF %s DEFAULT`, partition.DefaultName(TableName), TableName),
		fmt.Sprintf(`CREATE INDEX %s ON %s (user_id, created_at DESC, id DESC)`, UserCreatedIndex, TableName),
		fmt.Sprintf(`CREATE INDEX %s ON %s (created_at DESC, id DESC)`, CreatedIndex, TableName),
	)
	return stmts
}

// ChatMessagesDown drops the parent, which takes every partition and index
// with it.
func ChatMessagesDown() []string {
	return []string{fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, TableName)}
}

// ChatArchive is the versioned migration set of the service.
func ChatArchive(plan []partition.Partition) []Migration {
	return []Migration{
		{
			Version:     "001",
			Description: "partitioned chat_messages",
			Up:          ChatMessagesUp(plan),
			Down:        ChatMessagesDown(),
		},
	}
}
