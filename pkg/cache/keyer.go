package cache

// Keyer derives cache keys.
type Keyer interface {
	// PartitionKey addresses the result of one algorithm run on a tree.
	PartitionKey(treeHash string, opts PartitionKeyOpts) string

	// CompareKey addresses a multi-algorithm comparison on a tree.
	CompareKey(treeHash string, algorithms []string, opts PartitionKeyOpts) string
}

// PartitionKeyOpts lists every request field that changes a result. Worker
// count and logging are deliberately absent.
type PartitionKeyOpts struct {
	Algorithm     string  `json:"alg"`
	Root          int     `json:"root"`
	CPEnd         int     `json:"cp_end"`
	M             int64   `json:"M"`
	L             int64   `json:"L"`
	N             int     `json:"N"`
	Delay         int64   `json:"delay"`
	Unit          int64   `json:"unit"`
	Bidirectional bool    `json:"bidi"`
	Epsilon       float64 `json:"eps,omitempty"`
	Lambda        float64 `json:"lambda,omitempty"`
}

// DefaultKeyer hashes the options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PartitionKey returns "partition:<sha256>".
func (DefaultKeyer) PartitionKey(treeHash string, opts PartitionKeyOpts) string {
	return hashKey("partition", treeHash, opts)
}

// CompareKey returns "compare:<sha256>".
func (DefaultKeyer) CompareKey(treeHash string, algorithms []string, opts PartitionKeyOpts) string {
	return hashKey("compare", treeHash, algorithms, opts)
}
