package bind_group_provider

// BufferWrite describes one queue write into the buffer bound at Binding on Provider.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Marshaler is implemented by GPU structs that serialise themselves for upload, such as the camera uniform.
type Marshaler interface {
	Marshal() []byte
}

// UniformWrite builds a BufferWrite replacing the whole buffer at binding with m's bytes.
//
// Parameters:
//   - provider: the provider owning the buffer
//   - binding: the binding index of the buffer
//   - m: the value to upload
//
// Returns:
//   - BufferWrite: the write at offset 0
func UniformWrite(provider BindGroupProvider, binding int, m Marshaler) BufferWrite {
	return BufferWrite{Provider: provider, Binding: binding, Data: m.Marshal()}
}
