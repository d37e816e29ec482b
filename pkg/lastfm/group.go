package lastfm

import (
	"strings"

	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

var kindGroup = &Kind{Name: "group", Fields: []string{"name"}, SubjectScoped: true}

// Group is a Last.fm user group.
type Group struct {
	entity
	*chartSource
	name string
}

// Group returns the canonical group with the given name.
func (c *Client) Group(name string) (*Group, error) {
	name = strings.TrimSpace(name)
	return resolve(c.registry, kindGroup, Fields{"name": name}, nil, func(key Key) *Group {
		g := &Group{
			entity: entity{client: c, kind: kindGroup, key: key},
			name:   name,
		}
		g.chartSource = newChartSource(c, g, "group", Params{"group": name})
		return g
	})
}

// Name returns the group name as first seen.
func (g *Group) Name() string { return g.name }

func (g *Group) String() string { return g.name }

// URL returns the group's Last.fm page.
func (g *Group) URL() string {
	return webURL + "/group/" + webName(g.name)
}

func (g *Group) identity() identity {
	return identity{names: []string{g.name}, sortName: g.name}
}

// Members returns the group's members, paged lazily.
func (g *Group) Members() *lazyseq.Seq[*User] {
	params := Params{"group": g.name}
	return pagedSeq(g.client, "group.getMembers", params, func(inner []byte) ([]*User, int, error) {
		var resp struct {
			List struct {
				xmlPaging
				Users []xmlUser `xml:"user"`
			} `xml:"members"`
		}
		if err := unmarshalInner(inner, &resp); err != nil {
			return nil, 0, err
		}
		return g.client.usersFrom(resp.List.Users), resp.List.totalPages(), nil
	})
}
