// Package database provides the transaction and block types of the ledger,
// their canonical encodings and the interfaces storage backends implement.
package database

// Serializer interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Serializer interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator walks a Serializer converting each block back into a
// verified Block.
type DatabaseIterator struct {
	iterator Iterator
}

// NewIterator constructs an iterator over the blocks of the serializer.
func NewIterator(serializer Serializer) *DatabaseIterator {
	return &DatabaseIterator{iterator: serializer.ForEach()}
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}
