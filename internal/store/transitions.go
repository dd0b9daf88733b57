package store

import "clinicflow/visit-service/internal/models"

// transitionMap lists, per action, the statuses a visit may be in when the
// action is applied. Anything else is rejected instead of silently ignored so
// double submissions surface at the station that caused them.
var transitionMap = map[string][]string{
	"send_to_eye_measurement": {models.StatusWaiting, models.StatusRegistered},
	"record_measurement": {
		models.StatusWaiting, models.StatusRegistered, models.StatusEyeMeasurement,
		models.StatusWithDoctor, models.StatusInConsultation,
	},
	"call_consultation":       {models.StatusWaiting, models.StatusWithDoctor},
	"prescribe":               {models.StatusWithDoctor, models.StatusInConsultation},
	"dispense":                {models.StatusPharmacy},
}

func ValidTransition(action, fromStatus string) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
