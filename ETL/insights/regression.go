package insights

import (
	"fmt"
	"math"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// DataPoint представляет точку данных для линейной регрессии
type DataPoint struct {
	X float64 // log10(число отзывов + 1)
	Y float64 // Рейтинг приложения
}

// RegressionResult содержит результаты линейной регрессии
type RegressionResult struct {
	A      float64 `json:"slope"`     // Коэффициент наклона
	B      float64 `json:"intercept"` // Сдвиг
	R      float64 `json:"r"`         // Коэффициент корреляции Пирсона
	R2     float64 `json:"r2"`        // Коэффициент детерминации
	Points int     `json:"points"`

	dataPoints []DataPoint
}

// RatingEstimate - ожидаемый рейтинг для заданного числа отзывов
type RatingEstimate struct {
	Reviews int64   `json:"reviews"`
	Rating  float64 `json:"rating"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
}

// EngagementCorrelation - связь рейтинга с вовлеченностью (числом отзывов)
type EngagementCorrelation struct {
	Model     *RegressionResult `json:"model"`
	Estimates []RatingEstimate  `json:"estimates"`
}

// reviewTiers - уровни вовлеченности, для которых оценивается рейтинг
var reviewTiers = []int64{100, 1000, 10000, 100000, 1000000}

// RoundToThousandth округляет число до тысячных (3 знака после запятой)
func RoundToThousandth(value float64) float64 {
	return math.Round(value*1000) / 1000
}

// EngagementPoints строит точки регрессии по приложениям с рейтингом
func EngagementPoints(records []models.UnifiedRecord) []DataPoint {
	points := make([]DataPoint, 0, len(records))
	for _, r := range records {
		if r.Rating <= 0 {
			continue
		}
		points = append(points, DataPoint{
			X: math.Log10(float64(r.ReviewCount) + 1),
			Y: r.Rating,
		})
	}
	return points
}

// AnalyzeEngagement строит модель рейтинга от вовлеченности и оценки по уровням отзывов
func AnalyzeEngagement(ds *Dataset, confidenceLevel float64) (*EngagementCorrelation, error) {
	model, err := LinearRegression(EngagementPoints(ds.Records()))
	if err != nil {
		return nil, fmt.Errorf("ошибка при построении модели вовлеченности: %w", err)
	}

	ec := &EngagementCorrelation{Model: model}
	for _, tier := range reviewTiers {
		x := math.Log10(float64(tier) + 1)
		lower, upper := CalculateConfidenceInterval(model, x, confidenceLevel)
		ec.Estimates = append(ec.Estimates, RatingEstimate{
			Reviews: tier,
			Rating:  Predict(model, x),
			CILower: lower,
			CIUpper: upper,
		})
	}
	return ec, nil
}

// LinearRegression выполняет расчет линейной регрессии на основе входных данных
// и возвращает результат с коэффициентами
func LinearRegression(points []DataPoint) (*RegressionResult, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("для расчета линейной регрессии требуется минимум 2 точки, получено: %d", len(points))
	}

	// Метод наименьших квадратов:
	// a = (n*sum(x*y) - sum(x)*sum(y)) / (n*sum(x^2) - (sum(x))^2)
	// b = (sum(y) - a*sum(x)) / n
	n := float64(len(points))
	var sumX, sumY, sumXY, sumX2, sumY2 float64

	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumX2 += p.X * p.X
		sumY2 += p.Y * p.Y
	}

	denominator := n*sumX2 - sumX*sumX
	if math.Abs(denominator) < 1e-10 {
		return nil, fmt.Errorf("все X одинаковы, невозможно вычислить наклон")
	}

	a := (n*sumXY - sumX*sumY) / denominator
	b := (sumY - a*sumX) / n

	// r = (n*sum(x*y) - sum(x)*sum(y)) / sqrt[(n*sum(x^2) - (sum(x))^2) * (n*sum(y^2) - (sum(y))^2)]
	numerator := n*sumXY - sumX*sumY
	denominator = math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))

	var r float64
	if math.Abs(denominator) < 1e-10 {
		r = 0 // все Y одинаковы
	} else {
		r = numerator / denominator
	}

	return &RegressionResult{
		A:          RoundToThousandth(a),
		B:          RoundToThousandth(b),
		R:          RoundToThousandth(r),
		R2:         RoundToThousandth(r * r),
		Points:     len(points),
		dataPoints: points,
	}, nil
}

// Predict прогнозирует значение Y для заданного X на основе модели
func Predict(result *RegressionResult, x float64) float64 {
	return RoundToThousandth(result.A*x + result.B)
}

// CalculateConfidenceInterval вычисляет доверительный интервал для прогноза
// на основе стандартной ошибки и уровня значимости
func CalculateConfidenceInterval(result *RegressionResult, x float64, confidenceLevel float64) (float64, float64) {
	n := float64(len(result.dataPoints))
	yPred := Predict(result, x)
	if n <= 2 {
		return yPred, yPred
	}

	meanX := 0.0
	for _, p := range result.dataPoints {
		meanX += p.X
	}
	meanX /= n

	sumSqDevX := 0.0
	sumSqResiduals := 0.0
	for _, p := range result.dataPoints {
		predY := Predict(result, p.X)
		sumSqDevX += (p.X - meanX) * (p.X - meanX)
		sumSqResiduals += (p.Y - predY) * (p.Y - predY)
	}

	standardError := math.Sqrt(sumSqResiduals / (n - 2))

	// Приближение t-статистики для больших выборок
	tStat := 2.0
	if confidenceLevel == 0.99 {
		tStat = 2.58
	} else if confidenceLevel == 0.90 {
		tStat = 1.64
	}

	predictionStdError := standardError * math.Sqrt(1+1/n+(x-meanX)*(x-meanX)/sumSqDevX)
	margin := tStat * predictionStdError

	return RoundToThousandth(yPred - margin), RoundToThousandth(yPred + margin)
}
