package style

import (
	"testing"

	"github.com/citeproc-go/citeproc/errs"
	"github.com/stretchr/testify/require"
)

const minimalStyle = `<?xml version="1.0" encoding="utf-8"?>
<style class="in-text" version="1.0" default-locale="en-US">
  <macro name="author">
    <names variable="author">
      <name form="long" and="text"/>
      <et-al term="et-al"/>
    </names>
  </macro>
  <macro name="year">
    <date variable="issued" form="text"/>
  </macro>
  <citation>
    <layout delimiter="; ">
      <group delimiter=", ">
        <text macro="author"/>
        <text macro="year"/>
      </group>
    </layout>
  </citation>
  <bibliography>
    <sort>
      <key macro="author"/>
      <key variable="issued" sort="descending"/>
    </sort>
    <layout>
      <text macro="author" suffix=". "/>
      <text macro="year"/>
    </layout>
  </bibliography>
</style>`

func TestCompileMinimalStyle(t *testing.T) {
	st, err := Compile(minimalStyle)
	require.NoError(t, err)
	require.Equal(t, "in-text", st.Class)
	require.Equal(t, "en-US", st.DefaultLocale)
	require.NotNil(t, st.Citation)
	require.NotNil(t, st.Bibliography)
	require.Len(t, st.Bibliography.SortKeys, 2)
	require.True(t, st.Bibliography.SortKeys[0].Ascending)
	require.False(t, st.Bibliography.SortKeys[1].Ascending)

	_, ok := st.Macro("author")
	require.True(t, ok)
	_, ok = st.Macro("year")
	require.True(t, ok)
}

func TestCompileRejectsUndeclaredMacro(t *testing.T) {
	const src = `<style class="in-text">
	  <citation>
	    <layout><text macro="nope"/></layout>
	  </citation>
	</style>`
	_, err := Compile(src)
	require.Error(t, err)
	se, ok := errs.AsStyleError(err)
	require.True(t, ok)
	require.NotEmpty(t, se.Diagnostics)
	require.Contains(t, se.Diagnostics[0].Message, "nope")
}

func TestCompileRequiresExactlyOneLayoutInCitation(t *testing.T) {
	const src = `<style class="in-text">
	  <citation>
	    <layout><text value="a"/></layout>
	    <layout><text value="b"/></layout>
	  </citation>
	</style>`
	_, err := Compile(src)
	require.Error(t, err)
	se, _ := errs.AsStyleError(err)
	require.Contains(t, se.Diagnostics[0].Message, "exactly one")
}

func TestCompileRequiresCitation(t *testing.T) {
	const src = `<style class="in-text"></style>`
	_, err := Compile(src)
	require.Error(t, err)
	se, _ := errs.AsStyleError(err)
	require.Contains(t, se.Diagnostics[0].Message, "<citation>")
}

func TestCompileChooseShape(t *testing.T) {
	const src = `<style class="in-text">
	  <citation>
	    <layout>
	      <choose>
	        <else-if variable="issued"><text value="x"/></else-if>
	        <if variable="author"><text value="y"/></if>
	      </choose>
	    </layout>
	  </citation>
	</style>`
	_, err := Compile(src)
	require.Error(t, err)
	se, ok := errs.AsStyleError(err)
	require.True(t, ok)
	require.NotEmpty(t, se.Diagnostics)
}

func TestCompileDateFormRestrictsDatePartFormatting(t *testing.T) {
	const src = `<style class="in-text">
	  <citation>
	    <layout>
	      <date variable="issued" form="text">
	        <date-part name="year" font-weight="bold"/>
	      </date>
	    </layout>
	  </citation>
	</style>`
	_, err := Compile(src)
	require.Error(t, err)
	se, _ := errs.AsStyleError(err)
	require.Contains(t, se.Diagnostics[0].Message, "full")
}

func TestCompileFullDateAllowsDatePartFormatting(t *testing.T) {
	const src = `<style class="in-text">
	  <citation>
	    <layout>
	      <date variable="issued">
	        <date-part name="year" font-weight="bold"/>
	        <date-part name="month"/>
	      </date>
	    </layout>
	  </citation>
	</style>`
	st, err := Compile(src)
	require.NoError(t, err)
	dateEl, ok := st.Citation.Layout.Elements[0].(*DateElement)
	require.True(t, ok)
	require.True(t, dateEl.Full)
	require.Equal(t, "bold", dateEl.DateParts[0].Formatting.FontWeight)
}

func TestCompileInvalidDisambiguateValue(t *testing.T) {
	const src = `<style class="in-text">
	  <citation>
	    <layout>
	      <choose>
	        <if disambiguate="yes"><text value="x"/></if>
	      </choose>
	    </layout>
	  </citation>
	</style>`
	_, err := Compile(src)
	require.Error(t, err)
}

func TestCompileUnknownElementWarnsButDoesNotFail(t *testing.T) {
	const src = `<style class="in-text">
	  <citation>
	    <layout>
	      <frobnicate/>
	      <text value="x"/>
	    </layout>
	  </citation>
	</style>`
	st, err := Compile(src)
	require.NoError(t, err)
	require.Len(t, st.Citation.Layout.Elements, 1)
}

func TestCompileMalformedXML(t *testing.T) {
	_, err := Compile("<style><citation>")
	require.Error(t, err)
}
