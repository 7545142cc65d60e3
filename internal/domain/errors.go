package domain

import "errors"

var (
	// ErrNoWeatherData indica que el proveedor no tiene datos para (ciudad, fecha).
	// Para fechas futuras el engine lo trata como "saltar el día"; para fechas
	// históricas es fatal para el run.
	ErrNoWeatherData = errors.New("no weather data available")

	// ErrWeatherQuota indica agotamiento de cuota o fallo de autenticación (401)
	// del proveedor de clima. Siempre termina el run devolviendo parciales.
	ErrWeatherQuota = errors.New("weather API quota exhausted or unauthorized")
)
