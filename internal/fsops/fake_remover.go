package fsops

import "context"

// Fake implements Remover for testing.
// Records all remove calls without performing actual deletions.
type Fake struct {
	Calls []string
}

func (f *Fake) Remove(ctx context.Context, path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	return nil
}

func (f *Fake) RemoveAll(ctx context.Context, path string) error {
	f.Calls = append(f.Calls, "rmall:"+path)
	return nil
}

func (f *Fake) RemoveTree(ctx context.Context, path string) error {
	f.Calls = append(f.Calls, "rmtree:"+path)
	return nil
}
