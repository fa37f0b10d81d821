package pipeline

import (
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// State keys shared by all pipeline nodes.
const (
	KeyPatientID = "patient_id"
	KeyLetter    = "letter"
	KeyExtracted = "extracted_items"
	KeyProcessed = "processed_items"
	KeyPath      = "output_path"
)

// Letter is one immutable input document: a patient identifier and the
// free-text clinical letter.
type Letter struct {
	PatientID string
	Text      string
}

// NewState seeds a fresh per-letter pipeline state. Each run operates on its
// own state value; nothing mutable is shared between letters.
func NewState(letter Letter) state.State {
	s := state.New(nil)
	s = s.Set(KeyPatientID, letter.PatientID)
	s = s.Set(KeyLetter, letter.Text)
	return s
}

// PatientID returns the patient identifier from state.
func PatientID(s state.State) (string, error) {
	return stringKey(s, KeyPatientID)
}

// LetterText returns the letter text from state.
func LetterText(s state.State) (string, error) {
	return stringKey(s, KeyLetter)
}

// OutputPath returns the table path recorded by the storage node.
func OutputPath(s state.State) (string, error) {
	return stringKey(s, KeyPath)
}

// Extracted returns the typed extracted items from state. The extractor node
// sets them exactly once per run; they are never mutated afterward.
func Extracted[E any](s state.State) ([]E, error) {
	return sliceKey[E](s, KeyExtracted)
}

// Processed returns the typed processed items from state.
func Processed[P any](s state.State) ([]P, error) {
	return sliceKey[P](s, KeyProcessed)
}

func stringKey(s state.State, key string) (string, error) {
	val, ok := s.Get(key)
	if !ok {
		return "", fmt.Errorf("missing %s in state", key)
	}

	v, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s is not string", key)
	}

	return v, nil
}

func sliceKey[T any](s state.State, key string) ([]T, error) {
	val, ok := s.Get(key)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", key)
	}

	items, ok := val.([]T)
	if !ok {
		return nil, fmt.Errorf("%s is not %T", key, []T(nil))
	}

	return items, nil
}
