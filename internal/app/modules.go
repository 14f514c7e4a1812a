package app

import (
	"github.com/specialistvlad/dashgridgo/internal/registry"
	"github.com/specialistvlad/dashgridgo/modules/card"
	"github.com/specialistvlad/dashgridgo/modules/csvfile"
	"github.com/specialistvlad/dashgridgo/modules/datatable"
	"github.com/specialistvlad/dashgridgo/modules/graph"
	"github.com/specialistvlad/dashgridgo/modules/httpjson"
	"github.com/specialistvlad/dashgridgo/modules/inline"
	"github.com/specialistvlad/dashgridgo/modules/s3"
	"github.com/specialistvlad/dashgridgo/modules/socketio"
	"github.com/specialistvlad/dashgridgo/modules/sqlsource"
)

// coreModules is the definitive list of all renderers and dataset sources
// that are compiled into the dashgridgo binary.
var coreModules = []registry.Module{
	&graph.Module{},
	&datatable.Module{},
	&card.Module{},
	&inline.Module{},
	&csvfile.Module{},
	&sqlsource.Module{},
	&httpjson.Module{},
	&s3.Module{},
	&socketio.Module{},
}
