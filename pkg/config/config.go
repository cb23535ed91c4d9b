package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Input  InputConfig
	OCR    OCRConfig
	Parser ParserConfig
	Logger LoggerConfig
}

type InputConfig struct {
	Dir       string
	OutputCSV string
	Jobs      int
	TempDir   string // empty means os.TempDir()
}

type OCRConfig struct {
	Enabled   bool
	DPI       float64
	Languages []string
}

type ParserConfig struct {
	// MinTextChars is the minimum number of non-whitespace characters the
	// text layer must yield before OCR is skipped.
	MinTextChars int
}

type LoggerConfig struct {
	Level string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	jobs, _ := strconv.Atoi(getEnv("ANALYSE_JOBS", "1"))
	if jobs < 1 {
		jobs = 1
	}
	dpi, _ := strconv.ParseFloat(getEnv("OCR_DPI", "450"), 64)
	if dpi <= 0 {
		dpi = 450
	}
	minChars, _ := strconv.Atoi(getEnv("MIN_TEXT_CHARS", "32"))
	if minChars < 0 {
		minChars = 0
	}

	return &Config{
		Input: InputConfig{
			Dir:       getEnv("ANALYSE_INPUT_DIR", "PDFs to analyze"),
			OutputCSV: getEnv("ANALYSE_OUTPUT_CSV", "export_analyse_pdf.csv"),
			Jobs:      jobs,
			TempDir:   getEnv("ANALYSE_TEMP_DIR", ""),
		},
		OCR: OCRConfig{
			Enabled:   getEnv("OCR_ENABLED", "true") == "true",
			DPI:       dpi,
			Languages: splitLanguages(getEnv("OCR_LANGUAGES", "fra+eng")),
		},
		Parser: ParserConfig{
			MinTextChars: minChars,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitLanguages splits the tesseract-style "fra+eng" language list.
func splitLanguages(s string) []string {
	var langs []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '+' {
			if i > start {
				langs = append(langs, s[start:i])
			}
			start = i + 1
		}
	}
	if len(langs) == 0 {
		langs = []string{"fra", "eng"}
	}
	return langs
}
