package model

// Display names of the monitored workflow statuses of the FSA project.
const (
	StatusScheduling = "AGENDAMENTO"
	StatusScheduled  = "Agendado"
	StatusInField    = "TEC-CAMPO"

	StatusAwaitingSpare = "Aguardando Spare"
)

// StatusNames returns the monitored status names in display order.
func (s StatusConfig) StatusNames() []string {
	names := make([]string, 0, len(s.Monitored))
	for _, st := range s.Monitored {
		names = append(names, st.Name)
	}
	return names
}

// StatusIDs returns the monitored status ids in display order. A status
// configured without an id contributes its name.
func (s StatusConfig) StatusIDs() []string {
	ids := make([]string, 0, len(s.Monitored))
	for _, st := range s.Monitored {
		if st.ID == "" {
			ids = append(ids, st.Name)
			continue
		}
		ids = append(ids, st.ID)
	}
	return ids
}
