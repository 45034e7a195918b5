package utils

import (
	"math"
	"time"
)

// TimePoint is one timestamped value in a metric history.
type TimePoint struct {
	Time  time.Time
	Value float64
}

func LinearRegression(x, y []float64) (slope, correlation float64) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, 0
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX, sumYY float64

	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, 0
	}

	slope = (n*sumXY - sumX*sumY) / denominator
	numerator := n*sumXY - sumX*sumY
	denominatorCorr := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))

	if denominatorCorr == 0 {
		correlation = 0
	} else {
		correlation = numerator / denominatorCorr
	}

	return slope, correlation
}

// CalculateHistoryTrend fits the points inside the window and reports the
// slope scaled to value units per minute.
func CalculateHistoryTrend(points []TimePoint, window time.Duration) (slope, correlation float64) {
	if len(points) < 2 {
		return 0, 0
	}

	cutoff := time.Now().Add(-window)
	var windowPoints []TimePoint
	for _, point := range points {
		if point.Time.After(cutoff) {
			windowPoints = append(windowPoints, point)
		}
	}

	if len(windowPoints) < 2 {
		return 0, 0
	}

	x := make([]float64, len(windowPoints))
	y := make([]float64, len(windowPoints))
	for i, point := range windowPoints {
		x[i] = float64(i)
		y[i] = point.Value
	}

	slope, correlation = LinearRegression(x, y)

	timeSpan := windowPoints[len(windowPoints)-1].Time.Sub(windowPoints[0].Time)
	if timeSpan.Minutes() > 0 {
		slope = slope * float64(len(windowPoints)-1) / timeSpan.Minutes()
	}

	return slope, correlation
}
