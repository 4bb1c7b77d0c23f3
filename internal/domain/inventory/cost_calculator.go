package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * PrecioEntrada)) / (StockActual + CantEntrada)
// Solo las entradas mueven el promedio; las salidas conservan el costo vigente.
func CostCalculator(stockActual, costoActual, cantEntrada, precioEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(precioEntrada))
	return num.Div(sum)
}
