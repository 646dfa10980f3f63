package model

// Status identifies one stage of an order's lifecycle. The internal code
// is stable; the Vietnamese storefront label is a presentation mapping
// obtained via Label and parsed back via ParseLabel.
type Status string

const (
	StatusCreated         Status = "created"
	StatusPaid            Status = "paid"
	StatusPaymentFailed   Status = "payment_failed"
	StatusProcessing      Status = "processing"
	StatusShipping        Status = "shipping"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
	StatusReturnRequested Status = "return_requested"
	StatusReturnAccepted  Status = "return_accepted"
	StatusReturnRejected  Status = "return_rejected"
	StatusRefundPending   Status = "refund_pending"
	StatusRefundSucceeded Status = "refund_succeeded"
	StatusRefundFailed    Status = "refund_failed"
	StatusReturnSettled   Status = "return_settled"
)

// Labels as shown in the storefront. The stored history and the orders
// backend both speak these, so they double as the wire vocabulary.
var statusLabels = map[Status]string{
	StatusCreated:         "Đơn hàng vừa được tạo",
	StatusPaid:            "Đã thanh toán",
	StatusPaymentFailed:   "Thanh toán thất bại",
	StatusProcessing:      "Đang xử lý",
	StatusShipping:        "Đang giao hàng",
	StatusCompleted:       "Hoàn thành",
	StatusCancelled:       "Đã huỷ",
	StatusReturnRequested: "Đổi trả hàng",
	StatusReturnAccepted:  "Đã chấp nhận đổi trả",
	StatusReturnRejected:  "Đã từ chối đổi trả",
	StatusRefundPending:   "Đang chờ hoàn tiền",
	StatusRefundSucceeded: "Hoàn tiền thành công",
	StatusRefundFailed:    "Hoàn tiền thất bại",
	StatusReturnSettled:   "Đã hoàn thành đổi trả và hoàn tiền",
}

var labelToStatus = func() map[string]Status {
	m := make(map[string]Status, len(statusLabels))
	for s, l := range statusLabels {
		m[l] = s
	}
	return m
}()

func (s Status) String() string { return string(s) }

// Label returns the storefront display label, or the raw code for a
// status that has no label (should not happen for known statuses).
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Known reports whether s is part of the lifecycle vocabulary.
func (s Status) Known() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseLabel resolves a storefront label to its status.
func ParseLabel(label string) (Status, bool) {
	s, ok := labelToStatus[label]
	return s, ok
}

// ParseStatus resolves an internal status code.
func ParseStatus(code string) (Status, bool) {
	s := Status(code)
	return s, s.Known()
}

// ParseAny accepts either a label or an internal code. Handlers and the
// consumer use it so callers may send whichever form they have.
func ParseAny(v string) (Status, bool) {
	if s, ok := ParseLabel(v); ok {
		return s, ok
	}
	return ParseStatus(v)
}

// Category is the display bucket a status is rendered with. Purely
// presentational; nothing branches on it.
type Category string

const (
	CategoryPending Category = "pending"
	CategoryActive  Category = "active"
	CategorySuccess Category = "success"
	CategoryDanger  Category = "danger"
)

var statusCategories = map[Status]Category{
	StatusCreated:         CategoryPending,
	StatusPaid:            CategoryActive,
	StatusPaymentFailed:   CategoryDanger,
	StatusProcessing:      CategoryActive,
	StatusShipping:        CategoryActive,
	StatusCompleted:       CategorySuccess,
	StatusCancelled:       CategoryDanger,
	StatusReturnRequested: CategoryPending,
	StatusReturnAccepted:  CategoryActive,
	StatusReturnRejected:  CategoryDanger,
	StatusRefundPending:   CategoryPending,
	StatusRefundSucceeded: CategorySuccess,
	StatusRefundFailed:    CategoryDanger,
	StatusReturnSettled:   CategorySuccess,
}

// CategoryOf returns the display bucket for a status, defaulting to
// pending for anything unknown.
func CategoryOf(s Status) Category {
	if c, ok := statusCategories[s]; ok {
		return c
	}
	return CategoryPending
}
