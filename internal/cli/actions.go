package cli

// Indirection layer to allow stubbing in tests

var (
	fnServe   = serve
	fnEnqueue = enqueue
	fnQueue   = showQueue
	fnLibrary = showLibrary
	fnWatch   = watch
)
