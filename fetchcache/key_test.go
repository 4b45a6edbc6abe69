package fetchcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key{Subject: "u-1", Category: "c-9", Status: "published", Sort: "views", Search: "go", Page: 2}
	b := Key{Subject: "u-1", Category: "c-9", Status: "published", Sort: "views", Search: "go", Page: 2}

	assert.Equal(t, a.String(), b.String())
}

func TestKey_DiffersPerField(t *testing.T) {
	base := Key{Subject: "u-1", Category: "c-9", Status: "published", Sort: "views", Search: "go", Page: 2}

	variants := []Key{
		{Subject: "u-2", Category: "c-9", Status: "published", Sort: "views", Search: "go", Page: 2},
		{Subject: "u-1", Category: "c-8", Status: "published", Sort: "views", Search: "go", Page: 2},
		{Subject: "u-1", Category: "c-9", Status: "draft", Sort: "views", Search: "go", Page: 2},
		{Subject: "u-1", Category: "c-9", Status: "published", Sort: "likes", Search: "go", Page: 2},
		{Subject: "u-1", Category: "c-9", Status: "published", Sort: "views", Search: "rust", Page: 2},
		{Subject: "u-1", Category: "c-9", Status: "published", Sort: "views", Search: "go", Page: 3},
	}
	for _, v := range variants {
		assert.NotEqual(t, base.String(), v.String(), "%+v must derive its own key", v)
	}
}

func TestKey_AbsentFieldsCollapseToAll(t *testing.T) {
	k := Key{Page: 1}
	assert.Equal(t, "all|all||||1", k.String())
}

func TestKey_SearchTrimmed(t *testing.T) {
	a := Key{Search: "  golang  ", Page: 1}
	b := Key{Search: "golang", Page: 1}
	assert.Equal(t, a.String(), b.String())
}

func TestKey_LoadAllSharesOneSlot(t *testing.T) {
	p1 := Key{Subject: "u-1", Page: 1, LoadAll: true}
	p7 := Key{Subject: "u-1", Page: 7, LoadAll: true}

	assert.Equal(t, p1.String(), p7.String(), "every page of a load-all session maps to one key")
	assert.Contains(t, p1.String(), pageAll)
}

func TestSubjectPrefix(t *testing.T) {
	k := Key{Subject: "u-1", Category: "c-9", Page: 4}
	assert.Equal(t, "u-1|", k.SubjectPrefix())
	assert.Equal(t, "all|", SubjectPrefix(""))

	// Every key for the subject starts with its prefix.
	assert.Contains(t, k.String(), k.SubjectPrefix())
}
