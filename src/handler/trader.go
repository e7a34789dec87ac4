package handler

// Trader is everything the HTTP surface needs from the executor.
type Trader interface {
	accountQuerier
	accountResetter
	parameterStore
	modeSwitcher
	positionCloser
	signalReceiver
}
