package facts

// merge deep-merges partial onto base and returns the result. Maps merge
// recursively; scalars and arrays replace wholesale. Keys absent from partial
// are always preserved - a merge can add or overwrite, never delete.
//
// An explicit null value is stored as-is: the key stays present with a nil
// value. The normalizer treats nil the same as an absent key, so clients can
// "unanswer" a question without the store inventing a default.
func merge(base, partial WizardFacts) WizardFacts {
	out := base.Clone()
	if out == nil {
		out = make(WizardFacts, len(partial))
	}
	for k, v := range partial {
		existing, ok := out[k]
		if !ok {
			out[k] = cloneValue(v)
			continue
		}
		existingMap, existingIsMap := existing.(map[string]any)
		incomingMap, incomingIsMap := v.(map[string]any)
		if existingIsMap && incomingIsMap {
			out[k] = mergeMaps(existingMap, incomingMap)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func mergeMaps(base, partial map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(partial))
	for k, v := range base {
		out[k] = cloneValue(v)
	}
	for k, v := range partial {
		existing, ok := out[k]
		if ok {
			existingMap, existingIsMap := existing.(map[string]any)
			incomingMap, incomingIsMap := v.(map[string]any)
			if existingIsMap && incomingIsMap {
				out[k] = mergeMaps(existingMap, incomingMap)
				continue
			}
		}
		out[k] = cloneValue(v)
	}
	return out
}
