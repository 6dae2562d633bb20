package client

import "sort"

// Cache - реплики по uniqueID. Используется только из цикла кадра.
type Cache struct {
	replicas map[string]*Replica
}

func NewCache() *Cache {
	return &Cache{replicas: make(map[string]*Replica)}
}

// Add кладет реплику. Уже существующий uniqueID не перезаписывается.
func (c *Cache) Add(r *Replica) bool {
	if _, ok := c.replicas[r.ID()]; ok {
		return false
	}
	c.replicas[r.ID()] = r
	return true
}

func (c *Cache) Get(uniqueID string) (*Replica, bool) {
	r, ok := c.replicas[uniqueID]
	return r, ok
}

// Remove удаляет реплику и помечает ее уничтоженной.
// Повторное удаление возвращает false и ничего не делает.
func (c *Cache) Remove(uniqueID string) (*Replica, bool) {
	r, ok := c.replicas[uniqueID]
	if !ok {
		return nil, false
	}
	delete(c.replicas, uniqueID)
	r.status = statusDestroyed
	return r, true
}

func (c *Cache) Len() int {
	return len(c.replicas)
}

// IDs - отсортированные uniqueID (детерминированный порядок обхода).
func (c *Cache) IDs() []string {
	out := make([]string, 0, len(c.replicas))
	for id := range c.replicas {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Networked - uniqueID всех сетевых реплик.
func (c *Cache) Networked() []string {
	var out []string
	for _, id := range c.IDs() {
		if c.replicas[id].State.IsNetworked() {
			out = append(out, id)
		}
	}
	return out
}

func (c *Cache) Has(uniqueID string) bool {
	_, ok := c.replicas[uniqueID]
	return ok
}
