package transform

import (
	"time"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// ColumnTransformations - описание преобразований колонок Google Play
var ColumnTransformations = map[string]string{
	"reviews":  "Reviews → review_count (handled M/k suffixes)",
	"size":     "Size → size_mb (normalized to MB)",
	"installs": "Installs → installs (removed + and , symbols)",
	"price":    "Price → price_usd (removed $ symbol)",
	"date":     "Last Updated → last_updated (parsed to YYYY-MM-DD)",
}

// PipelineExecution - сведения о запуске очистки
type PipelineExecution struct {
	Timestamp   time.Time `json:"timestamp"`
	RunID       string    `json:"run_id"`
	InputFile   string    `json:"input_file"`
	OutputFiles []string  `json:"output_files"`
}

// DataTransformation - размеры датасета до и после очистки
type DataTransformation struct {
	OriginalShape      [2]int            `json:"original_shape"`
	FinalShape         [2]int            `json:"final_shape"`
	DuplicatesRemoved  int               `json:"duplicates_removed"`
	ColumnsTransformed map[string]string `json:"columns_transformed"`
}

// ValidationReport - отчет о проверке очищенного датасета Google Play
type ValidationReport struct {
	PipelineExecution  PipelineExecution     `json:"pipeline_execution"`
	DataTransformation DataTransformation    `json:"data_transformation"`
	DataQuality        models.QualityMetrics `json:"data_quality"`
	Columns            []string              `json:"columns"`
	ConversionStats    models.CleaningStats  `json:"conversion_stats"`
}

// BuildValidationReport собирает отчет о проверке по результатам Extract и Transform
func BuildValidationReport(
	runID, inputFile string,
	outputFiles []string,
	extracted *models.ExtractedData,
	transformed *models.TransformedData,
	now time.Time,
) ValidationReport {
	return ValidationReport{
		PipelineExecution: PipelineExecution{
			Timestamp:   now,
			RunID:       runID,
			InputFile:   inputFile,
			OutputFiles: outputFiles,
		},
		DataTransformation: DataTransformation{
			OriginalShape:      [2]int{len(extracted.PlayStore), extracted.PlayStoreColumns},
			FinalShape:         [2]int{transformed.AndroidApps, len(models.UnifiedColumns)},
			DuplicatesRemoved:  transformed.Stats.DuplicatesRemoved,
			ColumnsTransformed: ColumnTransformations,
		},
		DataQuality:     transformed.Quality,
		Columns:         models.UnifiedColumns,
		ConversionStats: transformed.Stats,
	}
}
