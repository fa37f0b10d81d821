package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/aidh-ms/MedMiner/pkg/model"
	"github.com/aidh-ms/MedMiner/pkg/tables"
)

// Node names for the generic pipeline stages.
const (
	NodeExtract     = "information_extractor"
	NodePassthrough = "no_processing"
	NodeStorage     = "data_storage"
)

// ExtractorNode returns the node that performs the single model extraction
// call for a run. The response must conform strictly to the declared schema;
// non-conforming or failed calls abort the run.
func ExtractorNode[E any](c model.Client, instruction string, schema model.Schema, logger *slog.Logger) Node {
	return NewNode(NodeExtract, func(ctx context.Context, s state.State) (state.State, error) {
		letter, err := LetterText(s)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrExtractFailed, err)
		}

		items, err := model.Extract[E](ctx, c, instruction, letter, schema)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrExtractFailed, err)
		}

		logger.InfoContext(ctx, "extraction complete", "items", len(items))
		return s.Set(KeyExtracted, items), nil
	})
}

// PassthroughNode returns the node used by domains that require no
// enrichment: it copies the extracted items into processed items unchanged.
// No side effects, no failure modes beyond absent extraction state.
func PassthroughNode[T any]() Node {
	return NewNode(NodePassthrough, func(ctx context.Context, s state.State) (state.State, error) {
		items, err := Extracted[T](s)
		if err != nil {
			return s, err
		}
		return s.Set(KeyProcessed, items), nil
	})
}

// StorageNode returns the terminal node that persists processed items as
// table rows and records the resulting path in state. Column order and row
// shaping are supplied explicitly by the workflow definition.
func StorageNode[P any](sys tables.System, table string, columns []string, row func(P) []string, logger *slog.Logger) Node {
	return NewNode(NodeStorage, func(ctx context.Context, s state.State) (state.State, error) {
		items, err := Processed[P](s)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrStoreFailed, err)
		}

		patientID, err := PatientID(s)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrStoreFailed, err)
		}

		rows := make([][]string, len(items))
		for i, item := range items {
			rows[i] = row(item)
		}

		path, err := sys.Append(table, patientID, columns, rows)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrStoreFailed, err)
		}

		logger.InfoContext(ctx, "rows stored", "table", table, "rows", len(rows), "path", path)
		return s.Set(KeyPath, path), nil
	})
}
