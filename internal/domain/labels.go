package domain

// Display tables consumed by the portal front end. Every enumerated value
// must have an entry; domain_test.go guards that.

var categoryLabels = map[TicketCategory]string{
	CategoryDeathCertificate: "मृत्यु प्रमाण पत्र",
	CategoryPaymentIssue:     "भुगतान समस्या",
	CategoryMembership:       "सदस्यता",
	CategoryDocumentUpload:   "दस्तावेज़ अपलोड",
	CategoryGeneral:          "सामान्य",
	CategoryTechnical:        "तकनीकी",
}

var statusLabels = map[TicketStatus]string{
	TicketStatusPending:    "लंबित",
	TicketStatusInProgress: "प्रगति में",
	TicketStatusResolved:   "हल हो गया",
	TicketStatusRejected:   "अस्वीकृत",
	TicketStatusEscalated:  "आगे बढ़ाया गया",
}

var priorityColors = map[TicketPriority]string{
	TicketPriorityHigh:   "red",
	TicketPriorityMedium: "orange",
	TicketPriorityLow:    "green",
}

// Label returns the display label of a category.
func (c TicketCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Label returns the display label of a status.
func (s TicketStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Color returns the badge colour of a priority.
func (p TicketPriority) Color() string {
	if color, ok := priorityColors[p]; ok {
		return color
	}
	return "default"
}
