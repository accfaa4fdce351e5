package daub

// complete moves r to its terminal state. A region painted with a single
// color is flattened to a fill of that color; multicolor artwork is kept
// as painted. The decision uses every color applied since the region was
// created. The live buffer is then baked and released, and the host is
// notified.
func (reg *Registry) complete(r *Region) {
	r.state = Completed

	if r.used.Len() == 1 {
		if s := r.Surface(); s != nil {
			s.Fill(r.used.Colors()[0])
		}
	}
	if err := reg.pool.Retire(r); err != nil {
		Logger().Warn("could not retire the surface", "region", r.id, "error", err)
	}

	finished, total := reg.Progress()
	Logger().Info("region completed",
		"region", r.id,
		"colors", r.used.Len(),
		"finished", finished,
		"total", total,
	)

	if reg.onComplete != nil {
		reg.onComplete(r.id, r.used.Clone())
	}
}
