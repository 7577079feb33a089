package domain

// A single origin-destination pair to be routed.
// Pairs are positional: the pair at index i of a batch is assigned
// route number i+1, and that number is stable for the whole dispatch.
type ODPair struct {
	From Coordinates
	To   Coordinates
}
