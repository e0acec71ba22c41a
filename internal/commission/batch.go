package commission

import "vatdesk/pkg/models"

// ToggleStatus flips a record between paid and unpaid.
func ToggleStatus(rec models.CommissionRecord) models.CommissionRecord {
	if rec.Status == models.CommissionPaid {
		rec.Status = models.CommissionUnpaid
	} else {
		rec.Status = models.CommissionPaid
	}
	return rec
}

// BatchStatus is paid only when the batch is non-empty and every record is paid.
func BatchStatus(records []models.CommissionRecord) models.CommissionStatus {
	if len(records) == 0 {
		return models.CommissionUnpaid
	}
	for _, r := range records {
		if r.Status != models.CommissionPaid {
			return models.CommissionUnpaid
		}
	}
	return models.CommissionPaid
}

// ToggleBatchStatus sets every record to the opposite of the batch's current status.
func ToggleBatchStatus(records []models.CommissionRecord) []models.CommissionRecord {
	next := models.CommissionPaid
	if BatchStatus(records) == models.CommissionPaid {
		next = models.CommissionUnpaid
	}
	out := make([]models.CommissionRecord, len(records))
	for i, r := range records {
		r.Status = next
		out[i] = r
	}
	return out
}

// ToggleSelectAll deselects everything when all records are selected, otherwise selects all.
func ToggleSelectAll(records []models.CommissionRecord) []models.CommissionRecord {
	all := len(records) > 0
	for _, r := range records {
		if !r.Selected {
			all = false
			break
		}
	}
	out := make([]models.CommissionRecord, len(records))
	for i, r := range records {
		r.Selected = !all
		out[i] = r
	}
	return out
}

// Summary reports over the selected records of a batch.
type Summary struct {
	Mode     Mode    `json:"mode"`
	TotalDue float64 `json:"total_due"`
	Selected int     `json:"selected"`
	Paid     int     `json:"paid"`
	Unpaid   int     `json:"unpaid"`
	Records  int     `json:"records"`
}

// Summarize totals the net due of the selected records and counts their statuses.
func Summarize(records []models.CommissionRecord, mode Mode) Summary {
	s := Summary{Mode: mode, Records: len(records)}
	for _, r := range records {
		if !r.Selected {
			continue
		}
		s.Selected++
		s.TotalDue += NetDue(r, mode)
		if r.Status == models.CommissionPaid {
			s.Paid++
		} else {
			s.Unpaid++
		}
	}
	return s
}
