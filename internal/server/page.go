package server

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Stock Data</title>
<script src="https://cdn.plot.ly/plotly-2.27.0.min.js"></script>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: right; }
#notice { color: #a60; }
#error { color: #c00; }
</style>
</head>
<body>
<h1>&#128200; Stock Data</h1>
<label for="ticker">Select Ticker</label>
<select id="ticker"></select>
<p id="error"></p>
<p id="notice"></p>
<table id="record"></table>
<div id="chart" style="width:1100px;height:700px"></div>

<h2>Indicators Explanation</h2>
<ul>
<li>Open, High, Low, Close (OHLC): These are the four basic data points used to create a candlestick chart. The "open" and "close" prices represent the opening and closing prices for a given period, while the "high" and "low" prices represent the highest and lowest prices that occurred during that same period.</li>
<li>Volume: This shows the total number of shares or contracts traded during a given period. High trading volumes often indicate high levels of interest in a particular stock or market.</li>
<li>Relative Strength Index (RSI): This is a momentum indicator that measures the magnitude of recent price changes to evaluate overbought or oversold conditions in the price of a stock or other asset.</li>
<li>Moving Average Convergence Divergence (MACD): This is a trend-following momentum indicator that shows the relationship between two moving averages of a security's price.</li>
<li>Simple Moving Average (SMA): This is a technical analysis tool that calculates the average price of a security over a specific time period. SMA can be used to determine the direction of the trend or to identify potential areas of support and resistance.</li>
<li>Bollinger Bands: These are a type of statistical chart characterizing the prices and volatility over time of a financial instrument or commodity. Bollinger Bands use a moving average and two standard deviations, which provides a relative definition of high and low prices.</li>
</ul>

<script>
async function getJSON(url) {
  const resp = await fetch(url);
  const body = await resp.json();
  if (!resp.ok) throw new Error(body.error || resp.statusText);
  return body;
}

function showRecord(r) {
  const m = r.metrics || {};
  const rows = [
    ["Name", r.name], ["Price", r.price],
    ["High Price", m.high_price], ["Low Price", m.low_price],
    ["Previous Close Price", m.previous_close], ["Today's Open Price", m.today_open],
    ["52-Week High", m.high_52w], ["52-Week Low", m.low_52w],
  ];
  const head = "<tr><th></th>" + rows.map(x => "<th>" + x[0] + "</th>").join("") + "</tr>";
  const body = "<tr><th>" + r.ticker + "</th>" + rows.map(x => "<td>" + (x[1] ?? "") + "</td>").join("") + "</tr>";
  document.getElementById("record").innerHTML = head + body;
}

function drawFigure(f) {
  const traces = [{
    type: "candlestick", name: "Stock Price", x: f.dates,
    open: f.candles.open, high: f.candles.high, low: f.candles.low, close: f.candles.close,
    increasing: {line: {color: f.up_color}}, decreasing: {line: {color: f.down_color}},
    xaxis: "x", yaxis: "y",
  }];
  for (const o of f.overlays || []) {
    traces.push({type: "scatter", mode: "lines", name: o.name, x: f.dates, y: o.values,
      line: {color: o.color}, fill: o.fill ? "tonexty" : undefined, xaxis: "x", yaxis: "y"});
  }
  const panels = f.panels || [];
  const layout = {title: f.title, showlegend: true, xaxis: {rangeslider: {visible: false}}};
  const main = 0.5, step = panels.length ? (1 - main) / panels.length : 0;
  layout.yaxis = {domain: [1 - main, 1]};
  panels.forEach((p, i) => {
    const axis = "y" + (i + 2);
    layout["yaxis" + (i + 2)] = {domain: [1 - main - (i + 1) * step, 1 - main - i * step - 0.02], title: p.name};
    for (const t of p.traces) {
      traces.push({type: t.kind === "bar" ? "bar" : "scatter", mode: "lines", name: t.name,
        x: f.dates, y: t.values, marker: {color: t.color}, line: {color: t.color}, xaxis: "x", yaxis: axis});
    }
  });
  Plotly.react("chart", traces, layout);
}

async function select(ticker) {
  document.getElementById("error").textContent = "";
  document.getElementById("notice").textContent = "";
  try {
    const sel = await getJSON("/api/tickers/" + ticker);
    showRecord(sel.record);
    if (sel.notice) {
      document.getElementById("notice").textContent = sel.notice;
      Plotly.purge("chart");
      return;
    }
    drawFigure(await getJSON("/api/tickers/" + ticker + "/chart"));
  } catch (e) {
    document.getElementById("error").textContent = e.message;
  }
}

(async () => {
  const sel = document.getElementById("ticker");
  try {
    const opts = await getJSON("/api/tickers");
    for (const o of opts) sel.add(new Option(o.label, o.value));
    sel.onchange = () => select(sel.value);
    if (opts.length) select(opts[0].value);
  } catch (e) {
    document.getElementById("error").textContent = e.message;
  }
})();
</script>
</body>
</html>
`
