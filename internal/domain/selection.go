package domain

import "sort"

// MinEdge es el umbral de edge para calificar como candidato:
// YES si edge > +MinEdge, NO si edge < -MinEdge.
const MinEdge = 0.02

// SelectPositions elige como mucho un YES y (en modo v2) un NO para el grupo
// de un día. El grupo debe llegar ya ordenado por umbral: los desempates son
// estables sobre ese orden, así que dos ejecuciones con el mismo grupo
// producen exactamente las mismas posiciones.
//
// Modo base (v1): solo se toma YES sobre el bucket de mayor fair price del
// grupo, y únicamente si ese bucket es además el candidato YES de mayor edge.
// La doble restricción evita perseguir long-shots poco probables que solo
// tienen mispricing relativo alto.
//
// Modo extendido (v2): toma el mejor candidato YES sin la restricción de
// mejor bucket, y además el mejor candidato NO, saltándolo si coincide con
// el bucket ya tomado como YES (caería al segundo mejor NO si existe).
func SelectPositions(group []GroupResult, v2 bool) []SelectedTrade {
	if len(group) == 0 {
		return nil
	}

	var yesCands, noCands []GroupResult
	for _, g := range group {
		// La entrada centinela lleva edge -1; un edge real nunca baja de
		// -0.99 (fair mínimo 0.01 contra precio máximo 1.0), así que esto
		// solo excluye contratos sin umbral o sin histórico utilizable.
		if !g.Threshold.Valid || g.Entry.Edge <= -1 {
			continue
		}
		switch {
		case g.Entry.Edge > MinEdge:
			yesCands = append(yesCands, g)
		case g.Entry.Edge < -MinEdge:
			noCands = append(noCands, g)
		}
	}

	sort.SliceStable(yesCands, func(i, j int) bool {
		return yesCands[i].Entry.Edge > yesCands[j].Entry.Edge
	})
	sort.SliceStable(noCands, func(i, j int) bool {
		return -noCands[i].Entry.Edge > -noCands[j].Entry.Edge
	})

	var trades []SelectedTrade

	if v2 {
		if len(yesCands) > 0 {
			trades = append(trades, yesTrade(yesCands[0]))
		}
		for _, cand := range noCands {
			if len(trades) > 0 && cand.Market.ID == trades[0].MarketID {
				continue // YES+NO simultáneo sobre el mismo bucket sería contradictorio
			}
			trades = append(trades, SelectedTrade{
				MarketID: cand.Market.ID,
				Side:     SideNo,
				Edge:     -cand.Entry.Edge,
				Price:    1 - cand.Entry.Price,
			})
			break
		}
		return trades
	}

	best := bestBucket(group)
	if len(yesCands) > 0 && yesCands[0].Market.ID == best.Market.ID {
		trades = append(trades, yesTrade(yesCands[0]))
	}
	return trades
}

// bestBucket devuelve el contrato con mayor fair price del grupo.
// Ante empate gana la primera aparición en orden de grupo.
func bestBucket(group []GroupResult) GroupResult {
	best := group[0]
	for _, g := range group[1:] {
		if g.FairPrice > best.FairPrice {
			best = g
		}
	}
	return best
}

func yesTrade(g GroupResult) SelectedTrade {
	return SelectedTrade{
		MarketID: g.Market.ID,
		Side:     SideYes,
		Edge:     g.Entry.Edge,
		Price:    g.Entry.Price,
	}
}
