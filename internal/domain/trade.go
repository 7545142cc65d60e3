package domain

// Side es el lado tomado en un contrato.
type Side string

const (
	SideYes  Side = "YES"
	SideNo   Side = "NO"
	SideNone Side = "NONE"
)

// EntryData es el snapshot de entrada de un contrato: precio alineado al
// inicio del día (o precio live), fair price y edge derivado.
type EntryData struct {
	Price     float64
	Timestamp string // "YYYY-MM-DD HH:MM", "LIVE" o "N/A"
	FairPrice float64
	Edge      float64
	Countdown string // solo en modo predicción
}

// GroupResult es el estado evaluado de un contrato dentro de su grupo diario.
// Se construye fresco en cada iteración (ciudad, fecha) y no se persiste.
type GroupResult struct {
	Market    Market
	Entry     EntryData
	FairPrice float64
	Threshold ThresholdInfo
}

// SelectedTrade es una posición elegida para un grupo: como mucho un YES y,
// en modo extendido, un NO por (ciudad, fecha). Se crea en la selección,
// la consume la reconciliación y no se muta después.
type SelectedTrade struct {
	MarketID string
	Side     Side
	Edge     float64 // magnitud del edge a favor del lado tomado
	Price    float64 // precio de entrada del lado tomado
}

// BacktestRow es una fila del ledger final: una por contrato evaluado (no
// solo los seleccionados), más una fila sintética TOTAL SUMMARY al final.
type BacktestRow struct {
	MarketID         string
	MarketGroup      string
	OutcomeBucket    string
	Side             Side
	Status           string // RESOLVED | UNRESOLVED/ACTIVE
	CreationDate     string
	StartOfDay       string
	ResolutionDate   string
	ForecastMaxF     float64
	ActualMaxF       string // "78.0" o "PENDING"
	TargetF          float64
	PredictedProb    string // "97% (0.97)"
	EntryPrice       float64
	EntryTime        string
	Resolution       string // "1", "0" o "N/A"
	ResolutionSource string // OFFICIAL | SIMULATED | PENDING
	TimeTillRes      string
	Invested         float64
	Payout           string // "2000.00" o "N/A"
	PnL              string
	ROI              string
	Summary          bool // true solo para la fila TOTAL SUMMARY
}

// TradeSummary resume una posición simulada para el resultado del run.
type TradeSummary struct {
	Date       string
	MarketID   string
	Question   string
	Side       Side
	EntryPrice float64
	FairPrice  float64
	Edge       float64
	Resolution float64
	Source     string // OFFICIAL | SIMULATED | PENDING
	Invested   float64
	Payout     float64
	PnL        float64
}

// RunResult es el resultado estructurado de un run completo del engine.
// Los callers deben comprobar Success antes de fiarse de los agregados:
// en un fallo fatal de clima histórico el run termina temprano y devuelve
// los resultados parciales acumulados junto al mensaje de error.
type RunResult struct {
	Success bool
	Error   string

	City   string
	Period string // "YYYY-MM-DD to YYYY-MM-DD"

	TotalInvested    float64
	TotalPayout      float64
	ResolvedInvested float64
	ResolvedPayout   float64
	ResolvedROI      float64
	PendingInvested  float64
	FinalPnL         float64
	FinalROI         float64

	CSVPath          string
	Trades           []TradeSummary
	MarketsFound     int
	MarketsProcessed int
}
