package hub

// DeliveryResult classifies the outcome of one frame for one subscriber.
type DeliveryResult string

const (
	DeliverySent    DeliveryResult = "sent"
	DeliveryDropped DeliveryResult = "dropped"
	DeliveryFailed  DeliveryResult = "failed"
)

// Recorder receives hub activity counters.
type Recorder interface {
	Broadcast()
	Delivery(result DeliveryResult)
	Subscribers(n int)
}

type noopRecorder struct{}

func (noopRecorder) Broadcast()              {}
func (noopRecorder) Delivery(DeliveryResult) {}
func (noopRecorder) Subscribers(int)         {}
