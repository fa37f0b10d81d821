package model

import (
	"context"
	"fmt"
)

type envelope[T any] struct {
	Data []T `json:"data"`
}

// Extract invokes the model with an extraction instruction and letter text,
// requiring a response that strictly conforms to the declared schema. The
// returned items preserve the model's output order. Call failures and schema
// violations both propagate; there is no coercion and no retry.
func Extract[T any](ctx context.Context, c Client, instruction, letter string, schema Schema) ([]T, error) {
	system := instruction + "\n\n" + schema.Render()

	content, err := c.Generate(ctx, system, letter)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	env, err := Decode[envelope[T]](content)
	if err != nil {
		return nil, err
	}

	return env.Data, nil
}

// Invoke performs a single structured model call outside the extraction
// envelope, decoding the response directly into T. Used for disambiguation
// calls where the response is one selection object.
func Invoke[T any](ctx context.Context, c Client, system, user string) (T, error) {
	var zero T

	content, err := c.Generate(ctx, system, user)
	if err != nil {
		return zero, fmt.Errorf("model call: %w", err)
	}

	return Decode[T](content)
}
