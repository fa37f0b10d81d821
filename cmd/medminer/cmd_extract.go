package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/aidh-ms/MedMiner/internal/config"
	"github.com/aidh-ms/MedMiner/internal/terminology"
	"github.com/aidh-ms/MedMiner/internal/workflows"
	"github.com/aidh-ms/MedMiner/internal/workflows/bootstrap"
	"github.com/aidh-ms/MedMiner/pkg/model"
	"github.com/aidh-ms/MedMiner/pkg/pipeline"
	"github.com/aidh-ms/MedMiner/pkg/tables"
)

var extractFlags struct {
	provider         string
	modelName        string
	baseURL          string
	token            string
	baseDir          string
	splitPatient     bool
	rxnavBaseURL     string
	snowstormBaseURL string
	icdClientID      string
	icdClientSecret  string
	statement        string
	verbose          bool
}

var extractCmd = &cobra.Command{
	Use:   "extract <workflow> <path>",
	Short: "Run an extraction workflow over one or more clinical letters",
	Long: `Run the named extraction workflow over clinical letters and append the
results to CSV tables under the output base directory.

The path argument is either a single letter file or a directory of .txt
letters. The file name stem is used as the patient identifier.

Usage:
  medminer extract medication_extraction_workflow letters/patient-17.txt
  medminer extract extraction_workflow letters/
  medminer extract boolean_statement_workflow letters/ --statement "The patient smokes."

Configuration is read from config.toml (plus a config.<MEDMINER_ENV>.toml
overlay when present); flags override file values, environment variables
override both.`,
	Args: cobra.ExactArgs(2),
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.provider, "provider", "", "Model provider name (default: $MEDMINER_AGENT_PROVIDER_NAME)")
	f.StringVar(&extractFlags.modelName, "model", "", "Model name (default: $MEDMINER_AGENT_MODEL_NAME)")
	f.StringVar(&extractFlags.baseURL, "base-url", "", "Model provider base URL (default: $MEDMINER_AGENT_BASE_URL)")
	f.StringVar(&extractFlags.token, "token", "", "Model provider token (default: $MEDMINER_AGENT_TOKEN)")
	f.StringVarP(&extractFlags.baseDir, "base-dir", "o", "", "Output base directory for CSV tables (default: working directory)")
	f.BoolVar(&extractFlags.splitPatient, "split-patient", false, "Write tables into a per-patient subdirectory")
	f.StringVar(&extractFlags.rxnavBaseURL, "rxnav-base-url", "", "RxNav API base URL")
	f.StringVar(&extractFlags.snowstormBaseURL, "snomed-base-url", "", "Snowstorm API base URL (empty disables procedure lookup)")
	f.StringVar(&extractFlags.icdClientID, "icd-client-id", "", "WHO ICD API client ID (default: $MEDMINER_ICD_CLIENT_ID)")
	f.StringVar(&extractFlags.icdClientSecret, "icd-client-secret", "", "WHO ICD API client secret (default: $MEDMINER_ICD_CLIENT_SECRET)")
	f.StringVar(&extractFlags.statement, "statement", "", "Statement to evaluate (boolean statement workflow only)")
	f.BoolVarP(&extractFlags.verbose, "verbose", "v", false, "Enable debug logging")
}

func runExtract(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyExtractFlags(cfg)
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("finalize config: %w", err)
	}

	level := slog.LevelInfo
	if extractFlags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	reg := bootstrap.Registry()
	def, ok := reg.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q (available: %s)", workflows.ErrUnknownWorkflow, name, strings.Join(reg.Keys(), ", "))
	}

	letters, err := loadLetters(path)
	if err != nil {
		return err
	}
	if len(letters) == 0 {
		return fmt.Errorf("%w: %s", workflows.ErrEmptyInput, path)
	}

	rt := &workflows.Runtime{
		Model:     model.NewAgentClient(&cfg.Agent),
		Tables:    tables.New(&cfg.Tables, logger),
		RxNav:     terminology.NewRxNavClient(&cfg.Terminology, logger),
		ICD:       terminology.NewICDClient(&cfg.Terminology, logger),
		Snowstorm: terminology.NewSnowstormClient(&cfg.Terminology, logger),
		Statement: extractFlags.statement,
		Logger:    logger,
	}

	wf, err := def.Build(rt)
	if err != nil {
		return fmt.Errorf("build workflow %s: %w", name, err)
	}

	results, err := wf.RunMany(cmd.Context(), letters)
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.PatientID, r.Path)
	}
	if err != nil {
		return fmt.Errorf("run workflow %s: %w", name, err)
	}

	return nil
}

func applyExtractFlags(cfg *config.Config) {
	if cfg.Agent.Provider == nil {
		cfg.Agent.Provider = &gaconfig.ProviderConfig{}
	}
	if cfg.Agent.Provider.Options == nil {
		cfg.Agent.Provider.Options = make(map[string]any)
	}
	if cfg.Agent.Model == nil {
		cfg.Agent.Model = &gaconfig.ModelConfig{}
	}
	if extractFlags.provider != "" {
		cfg.Agent.Provider.Name = extractFlags.provider
	}
	if extractFlags.baseURL != "" {
		cfg.Agent.Provider.BaseURL = extractFlags.baseURL
	}
	if extractFlags.token != "" {
		cfg.Agent.Provider.Options["token"] = extractFlags.token
	}
	if extractFlags.modelName != "" {
		cfg.Agent.Model.Name = extractFlags.modelName
	}
	if extractFlags.baseDir != "" {
		cfg.Tables.BaseDir = extractFlags.baseDir
	}
	if extractFlags.splitPatient {
		cfg.Tables.SplitPatient = true
	}
	if extractFlags.rxnavBaseURL != "" {
		cfg.Terminology.RxNavBaseURL = extractFlags.rxnavBaseURL
	}
	if extractFlags.snowstormBaseURL != "" {
		cfg.Terminology.SnowstormBaseURL = extractFlags.snowstormBaseURL
	}
	if extractFlags.icdClientID != "" {
		cfg.Terminology.ICDClientID = extractFlags.icdClientID
	}
	if extractFlags.icdClientSecret != "" {
		cfg.Terminology.ICDClientSecret = extractFlags.icdClientSecret
	}
}

// loadLetters reads a single letter file, or every .txt file in a directory.
// The file name stem becomes the patient identifier.
func loadLetters(path string) ([]pipeline.Letter, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		letter, err := loadLetter(path)
		if err != nil {
			return nil, err
		}
		return []pipeline.Letter{letter}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}

	var letters []pipeline.Letter
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		letter, err := loadLetter(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, err
		}
		letters = append(letters, letter)
	}
	return letters, nil
}

func loadLetter(path string) (pipeline.Letter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Letter{}, fmt.Errorf("read letter %s: %w", path, err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return pipeline.Letter{PatientID: stem, Text: string(data)}, nil
}
