package testutil

// SalesDashboard is a one-page dashboard over an inline dataset: two graphs
// sharing the data, a card, a region checklist filtering both graphs, an
// amount range filter, a top_n parameter on the first graph and a click
// interaction from the first graph to the second.
const SalesDashboard = `
dataset "sales" {
  source = "inline"
  args = {
    columns = ["region", "product", "amount"]
    rows = [
      ["EU", "apples", 10],
      ["EU", "pears", 30],
      ["US", "apples", 20],
      ["APAC", "pears", 5],
    ]
  }
}

page "overview" {
  title = "Overview"

  component "graph" "by_region" {
    dataset = "sales"
    config  = { x = "region", y = "amount", type = "bar", custom_data = ["region"] }
    action "filter_interaction" {
      targets = ["detail"]
    }
  }

  component "table" "detail" {
    dataset = "sales"
    config  = { columns = ["region", "product", "amount"] }
  }

  component "card" "intro" {
    config = { text = "Sales overview" }
  }

  control "checklist" "region_filter" {
    options = ["EU", "US", "APAC"]
    value   = ALL
    action "filter" {
      column = "region"
    }
  }

  control "range_slider" "amount_range" {
    options = [0, 100]
    value   = [0, 100]
    action "filter" {
      column  = "amount"
      targets = ["detail"]
    }
  }

  control "slider" "top" {
    options = [1, 2, 3]
    value   = 3
    action "parameter" {
      targets = ["by_region.top_n"]
    }
  }

  control "button" "download" {
    action "export_data" {
      targets = ["detail"]
    }
  }
}
`
