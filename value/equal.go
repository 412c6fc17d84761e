package value

// Equal reports deep structural equality. Tags must match, so the number
// 8080 never equals the string "8080". Map comparison ignores key order.
func Equal(a Value, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindAbsent, KindNull:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number.equal(b.number)
	case KindString:
		return a.text == b.text
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for idx := range a.list {
			if !Equal(a.list[idx], b.list[idx]) {
				return false
			}
		}
		return true
	case KindMap:
		if a.object.Len() != b.object.Len() {
			return false
		}
		for key, left := range a.object.All() {
			right, found := b.object.Get(key)
			if !found || !Equal(left, right) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
