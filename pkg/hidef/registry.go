package hidef

// Registry assigns each distinct cluster name a synthetic integer id.
// Ids are allocated in first-seen order, starting strictly above the
// highest original node id, so cluster ids and node ids never collide.
// The mapping is insert-if-absent: once a name has an id, later Resolve
// calls return it unchanged.
//
// A Registry belongs to a single conversion run and is not safe for
// concurrent use.
type Registry struct {
	byName map[string]int
	names  []string // discovery order
	nextID int
}

// NewRegistry creates a registry seeded with the maximum original node id.
// The first resolved cluster receives maxNodeID+1.
func NewRegistry(maxNodeID int) *Registry {
	return &Registry{
		byName: make(map[string]int),
		nextID: maxNodeID,
	}
}

// Resolve returns the id for name, allocating the next id if the name has
// not been seen before.
func (r *Registry) Resolve(name string) int {
	if id, ok := r.byName[name]; ok {
		return id
	}
	r.nextID++
	r.byName[name] = r.nextID
	r.names = append(r.names, name)
	return r.nextID
}

// Lookup returns the id for name without allocating.
// The second return value is false if the name was never resolved.
func (r *Registry) Lookup(name string) (int, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Names returns the cluster names in discovery order. Since ids are
// allocated monotonically, this order is also ascending id order.
func (r *Registry) Names() []string {
	return r.names
}

// Len returns the number of distinct clusters resolved.
func (r *Registry) Len() int {
	return len(r.names)
}
