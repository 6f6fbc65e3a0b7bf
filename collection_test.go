package translator

import (
	"cmp"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	gocmp "github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Station-Manager/translator/collection"
)

type Foo struct{ Name string }

type Bar struct{ Name string }

type listHolder struct{ Items []string }

type setHolder struct{ Items map[string]struct{} }

type sortedHolder struct {
	Items *collection.SortedSet[string]
}

type CollectionSuite struct {
	suite.Suite
	cfg    *Configuration
	noCopy *Configuration
}

func TestCollections(t *testing.T) {
	suite.Run(t, new(CollectionSuite))
}

func (s *CollectionSuite) SetupTest() {
	s.cfg = New()
	s.noCopy = NewWithOptions(WithDefensiveCopies(false))
}

func reverse(a, b string) int { return cmp.Compare(b, a) }

func (s *CollectionSuite) TestListIsCopiedByDefault() {
	src := &listHolder{Items: []string{"Ay", "Bee", "Dee"}}

	dst, err := TranslateTo[listHolder](s.cfg, src)
	s.Require().NoError(err)

	s.Equal(src.Items, dst.Items)
	s.NotSame(&src.Items[0], &dst.Items[0])
	src.Items[0] = "changed"
	s.Equal("Ay", dst.Items[0])
}

func (s *CollectionSuite) TestListIsSharedWithoutDefensiveCopies() {
	src := &listHolder{Items: []string{"Ay", "Bee"}}

	dst, err := TranslateTo[listHolder](s.noCopy, src)
	s.Require().NoError(err)

	s.Same(&src.Items[0], &dst.Items[0])
}

func (s *CollectionSuite) TestSetIsCopiedByDefault() {
	src := &setHolder{Items: map[string]struct{}{"Ay": {}, "Bee": {}}}

	dst, err := TranslateTo[setHolder](s.cfg, src)
	s.Require().NoError(err)

	s.Equal(src.Items, dst.Items)
	s.NotEqual(reflect.ValueOf(src.Items).Pointer(), reflect.ValueOf(dst.Items).Pointer())
	src.Items["Cee"] = struct{}{}
	s.Len(dst.Items, 2)
}

func (s *CollectionSuite) TestSetIsSharedWithoutDefensiveCopies() {
	src := &setHolder{Items: map[string]struct{}{"Ay": {}}}

	dst, err := TranslateTo[setHolder](s.noCopy, src)
	s.Require().NoError(err)

	s.Equal(reflect.ValueOf(src.Items).Pointer(), reflect.ValueOf(dst.Items).Pointer())
}

func (s *CollectionSuite) TestSortedSetKeepsOrdering() {
	src := &sortedHolder{Items: collection.NewSortedSet(reverse, "Bee", "Ay", "Dee")}

	dst, err := TranslateTo[sortedHolder](s.cfg, src)
	s.Require().NoError(err)

	s.Require().NotNil(dst.Items)
	s.NotSame(src.Items, dst.Items)
	s.Equal([]string{"Dee", "Bee", "Ay"}, dst.Items.Values())

	// The copy sorts new elements with the source's comparator.
	dst.Items.Add("Cee")
	s.Equal([]string{"Dee", "Cee", "Bee", "Ay"}, dst.Items.Values())
	s.Equal(3, src.Items.Len())
}

func (s *CollectionSuite) TestSortedSetOfObjectsIsTranslated() {
	type Src struct{ Items *collection.SortedSet[*Foo] }
	type Dst struct{ Items *collection.SortedSet[*Bar] }
	byNameDesc := func(a, b *Foo) int { return cmp.Compare(b.Name, a.Name) }
	src := &Src{Items: collection.NewSortedSet(byNameDesc, &Foo{Name: "a"}, &Foo{Name: "c"}, &Foo{Name: "b"})}

	dst, err := TranslateTo[Dst](s.cfg, src)
	s.Require().NoError(err, spew.Sdump(src))
	s.Require().NotNil(dst.Items)

	names := func() []string {
		var out []string
		for b := range dst.Items.All() {
			out = append(out, b.Name)
		}
		return out
	}
	s.Equal([]string{"c", "b", "a"}, names())

	// Elements added later follow the translated ones.
	s.True(dst.Items.Add(&Bar{Name: "z"}))
	s.Equal([]string{"c", "b", "a", "z"}, names())
}

func (s *CollectionSuite) TestSortedSetIsSharedWithoutDefensiveCopies() {
	src := &sortedHolder{Items: collection.NewOrderedSet("Ay", "Bee")}

	dst, err := TranslateTo[sortedHolder](s.noCopy, src)
	s.Require().NoError(err)

	s.Same(src.Items, dst.Items)
}

func (s *CollectionSuite) TestSliceIntoSortedSet() {
	type Src struct{ Items []string }

	dst, err := TranslateTo[sortedHolder](s.cfg, &Src{Items: []string{"Dee", "Ay", "Bee", "Ay"}})
	s.Require().NoError(err)

	s.Equal([]string{"Ay", "Bee", "Dee"}, dst.Items.Values())
}

func (s *CollectionSuite) TestSortedSetIntoSlice() {
	src := &sortedHolder{Items: collection.NewSortedSet(reverse, "Ay", "Dee", "Bee")}

	dst, err := TranslateTo[listHolder](s.cfg, src)
	s.Require().NoError(err)

	s.Equal([]string{"Dee", "Bee", "Ay"}, dst.Items)
}

func (s *CollectionSuite) TestItemsAreTranslatedInOrder() {
	type Src struct{ Items []Foo }
	type Dst struct{ Items []Bar }
	src := &Src{Items: []Foo{{Name: "a"}, {Name: "b"}, {Name: "c"}}}

	dst, err := TranslateTo[Dst](s.cfg, src)
	s.Require().NoError(err)

	want := []Bar{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	s.Empty(gocmp.Diff(want, dst.Items), spew.Sdump(dst))
}

func (s *CollectionSuite) TestItemsAreTranslatedEvenWithoutDefensiveCopies() {
	type Src struct{ Items []*Foo }
	type Dst struct{ Items []*Bar }
	src := &Src{Items: []*Foo{{Name: "a"}, nil, {Name: "c"}}}

	dst, err := TranslateTo[Dst](s.noCopy, src)
	s.Require().NoError(err)

	s.Require().Len(dst.Items, 3)
	s.Equal("a", dst.Items[0].Name)
	s.Nil(dst.Items[1])
	s.Equal("c", dst.Items[2].Name)
}

func (s *CollectionSuite) TestForcedItemTranslation() {
	type Src struct{ Items []*Foo }
	type Dst struct {
		Items []*Foo `translate:"translate"`
	}
	foo := &Foo{Name: "a"}

	dst, err := TranslateTo[Dst](s.cfg, &Src{Items: []*Foo{foo}})
	s.Require().NoError(err)

	s.Require().Len(dst.Items, 1)
	s.NotSame(foo, dst.Items[0])
	s.Equal(*foo, *dst.Items[0])
}

func (s *CollectionSuite) TestItemSource() {
	type Src struct{ Items []*Foo }
	type Dst struct {
		Names []string `translate:"source=Items;itemSource=Name"`
	}

	dst, err := TranslateTo[Dst](s.cfg, &Src{Items: []*Foo{{Name: "a"}, {Name: "b"}}})
	s.Require().NoError(err)

	s.Equal([]string{"a", "b"}, dst.Names)
}

func (s *CollectionSuite) TestNilCollectionStaysNil() {
	dst, err := TranslateTo[listHolder](s.cfg, &listHolder{})
	s.Require().NoError(err)
	s.Nil(dst.Items)
}

func (s *CollectionSuite) TestSliceIntoArray() {
	type Dst struct{ Items [3]string }

	dst, err := TranslateTo[Dst](s.cfg, &listHolder{Items: []string{"a", "b"}})
	s.Require().NoError(err)
	s.Equal([3]string{"a", "b", ""}, dst.Items)

	_, err = TranslateTo[Dst](s.cfg, &listHolder{Items: []string{"a", "b", "c", "d"}})
	s.ErrorIs(err, ErrTypeMismatch)
}

func (s *CollectionSuite) TestArrayIntoSlice() {
	type Src struct{ Items [2]Foo }
	type Dst struct{ Items []Bar }

	dst, err := TranslateTo[Dst](s.cfg, &Src{Items: [2]Foo{{Name: "x"}, {Name: "y"}}})
	s.Require().NoError(err)
	s.Equal([]Bar{{Name: "x"}, {Name: "y"}}, dst.Items)
}

func (s *CollectionSuite) TestArrayWithoutDefensiveCopies() {
	type Holder struct{ Items [2]string }

	dst, err := TranslateTo[Holder](s.noCopy, &Holder{Items: [2]string{"a", "b"}})
	s.Require().NoError(err)
	s.Equal([2]string{"a", "b"}, dst.Items)
}

func (s *CollectionSuite) TestSetItemsAreTranslated() {
	type Src struct{ Items map[Foo]struct{} }
	type Dst struct{ Items map[Bar]struct{} }

	dst, err := TranslateTo[Dst](s.cfg, &Src{Items: map[Foo]struct{}{{Name: "a"}: {}, {Name: "b"}: {}}})
	s.Require().NoError(err)

	s.Equal(map[Bar]struct{}{{Name: "a"}: {}, {Name: "b"}: {}}, dst.Items)
}

func (s *CollectionSuite) TestSliceIntoSet() {
	type Dst struct{ Items map[string]struct{} }

	dst, err := TranslateTo[Dst](s.cfg, &listHolder{Items: []string{"a", "b", "a"}})
	s.Require().NoError(err)
	s.Equal(map[string]struct{}{"a": {}, "b": {}}, dst.Items)
}

func (s *CollectionSuite) TestMapValuesAndKeys() {
	type Src struct{ Items map[string]*Foo }
	type Dst struct{ Items map[string]*Bar }
	type Counts struct{ Items map[string]int }
	type ByNumber struct{ Items map[int]int }

	dst, err := TranslateTo[Dst](s.cfg, &Src{Items: map[string]*Foo{"one": {Name: "1"}}})
	s.Require().NoError(err)
	s.Require().Contains(dst.Items, "one")
	s.Equal("1", dst.Items["one"].Name)

	byNumber, err := TranslateTo[ByNumber](s.cfg, &Counts{Items: map[string]int{"1": 10, "2": 20}})
	s.Require().NoError(err)
	s.Equal(map[int]int{1: 10, 2: 20}, byNumber.Items)
}

func (s *CollectionSuite) TestListIntoMapIsTypeMismatch() {
	type Dst struct{ Items map[string]string }

	_, err := TranslateTo[Dst](s.cfg, &listHolder{Items: []string{"a"}})
	s.ErrorIs(err, ErrTypeMismatch)
}

func (s *CollectionSuite) TestEachTranslationOfSlice() {
	sess := NewSession(s.cfg)
	foo := &Foo{Name: "a"}

	out, err := sess.EachTranslation([]*Foo{foo, {Name: "b"}, foo}, reflect.TypeFor[Bar](), "")
	s.Require().NoError(err)

	bars := out.([]*Bar)
	s.Require().Len(bars, 3)
	s.Equal("b", bars[1].Name)
	s.Same(bars[0], bars[2])
}

func (s *CollectionSuite) TestEachTranslationWithItemExpression() {
	out, err := NewSession(s.cfg).EachTranslation([]Foo{{Name: "1"}, {Name: "2"}}, reflect.TypeFor[int](), "Name")
	s.Require().NoError(err)
	s.Equal([]int{1, 2}, out)
}

func (s *CollectionSuite) TestEachTranslationOfSet() {
	out, err := NewSession(s.cfg).EachTranslation(map[string]struct{}{"1": {}, "2": {}}, reflect.TypeFor[int](), "")
	s.Require().NoError(err)
	s.Equal(map[int]struct{}{1: {}, 2: {}}, out)
}

func (s *CollectionSuite) TestEachTranslationOfSortedSet() {
	src := collection.NewSortedSet(reverse, "a", "c", "b")

	out, err := NewSession(s.cfg).EachTranslation(src, reflect.TypeFor[string](), "")
	s.Require().NoError(err)
	s.Equal([]string{"c", "b", "a"}, out)
}

func (s *CollectionSuite) TestEachTranslationNil() {
	out, err := NewSession(s.cfg).EachTranslation(nil, reflect.TypeFor[Bar](), "")
	s.Require().NoError(err)
	s.Nil(out)
}

func (s *CollectionSuite) TestEachTranslationOfScalarIsTypeMismatch() {
	_, err := NewSession(s.cfg).EachTranslation(42, reflect.TypeFor[Bar](), "")
	s.ErrorIs(err, ErrTypeMismatch)
}

func TestEachSlice(t *testing.T) {
	s := NewSession(New())
	foo := &Foo{Name: "a"}

	bars, err := EachSlice[*Bar](s, []*Foo{foo, foo}, "")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	require.Same(t, bars[0], bars[1])

	names, err := EachSlice[string](s, []*Foo{foo}, "Name")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, names)

	none, err := EachSlice[*Bar, *Foo](s, nil, "")
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestEachSet(t *testing.T) {
	out, err := EachSet[int](NewSession(New()), map[string]struct{}{"1": {}, "3": {}}, "")
	require.NoError(t, err)
	require.Equal(t, map[int]struct{}{1: {}, 3: {}}, out)
}

func TestEachSeq(t *testing.T) {
	set := collection.NewOrderedSet(3, 1, 2)

	out, err := EachSeq[string](NewSession(New()), set.All(), "")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, out)
}
