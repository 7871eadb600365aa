package model

// AdvisoryStats счётчики заявок участника.
// Разбиения по статусу и по модальности независимы: Total всегда равен сумме
// статусов, а сумме модальностей только если у каждой заявки задана модальность.
type AdvisoryStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Accepted   int64 `json:"accepted"`
	Rejected   int64 `json:"rejected"`
	Completed  int64 `json:"completed"`
	Virtual    int64 `json:"virtual"`
	Presencial int64 `json:"presencial"`
}

// ComputeStats считает статистику по списку заявок
func ComputeStats(advisories []*Advisory) *AdvisoryStats {
	stats := &AdvisoryStats{Total: int64(len(advisories))}

	for _, a := range advisories {
		switch a.Status {
		case AdvisoryStatusPending:
			stats.Pending++
		case AdvisoryStatusAccepted:
			stats.Accepted++
		case AdvisoryStatusRejected:
			stats.Rejected++
		case AdvisoryStatusCompleted:
			stats.Completed++
		}

		switch a.Modality {
		case ModalityVirtual:
			stats.Virtual++
		case ModalityInPerson:
			stats.Presencial++
		}
	}

	return stats
}

// Map возвращает статистику в виде отображения ключ -> счётчик
func (s *AdvisoryStats) Map() map[string]int64 {
	return map[string]int64{
		"total":      s.Total,
		"pending":    s.Pending,
		"accepted":   s.Accepted,
		"rejected":   s.Rejected,
		"completed":  s.Completed,
		"virtual":    s.Virtual,
		"presencial": s.Presencial,
	}
}
