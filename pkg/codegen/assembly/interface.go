package assembly

// Assembly is a target backend: Generate produces the program text, GetCode
// returns it and Build writes it wherever the backend's output goes.
type Assembly interface {
	Generate() error
	GetCode() string
	Build() error
}
